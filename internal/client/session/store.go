// Package session implements the credential store: the process-wide owner of
// the access/refresh token pair and the authenticated user profile.
//
// The store keeps one invariant at all times: user and access token are both
// present or both absent. Login, refresh and teardown mutate the in-memory
// state and the persisted copies together, so a restart observes the same
// session the process last held.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"lexmail/internal/client/repositories/metadata"
	"lexmail/internal/common"
	"lexmail/internal/dbx"
	"lexmail/internal/logging"
)

// User is the authenticated profile as delivered by the portal.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

// Names of the persisted copies in the metadata store.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
)

// Store holds the session singleton. All mutations go through its methods;
// no other component writes these fields directly.
type Store struct {
	db  *sql.DB
	log logging.Logger

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	user         *User

	loading bool
	lastErr error
}

func NewStore(db *sql.DB, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{db: db, log: log}
}

func (s *Store) repo(tx dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(tx)
}

// Hydrate restores a previously persisted session. A partial record (any of
// the three copies missing or unreadable) is discarded entirely so a half
// session never becomes visible.
func (s *Store) Hydrate(ctx context.Context) error {
	repo := s.repo(s.db)

	access, err := repo.Get(ctx, keyAccessToken)
	if err != nil {
		return fmt.Errorf("failed to hydrate session: %w", err)
	}
	refresh, err := repo.Get(ctx, keyRefreshToken)
	if err != nil {
		return fmt.Errorf("failed to hydrate session: %w", err)
	}
	rawUser, err := repo.Get(ctx, keyUser)
	if err != nil {
		return fmt.Errorf("failed to hydrate session: %w", err)
	}

	if len(access) == 0 || len(rawUser) == 0 {
		if len(access) != 0 || len(refresh) != 0 || len(rawUser) != 0 {
			s.log.Warn(ctx, "discarding partial persisted session")
			s.Clear(ctx)
		}
		return nil
	}

	var u User
	if err := json.Unmarshal(rawUser, &u); err != nil {
		s.log.Warn(ctx, "discarding unreadable persisted session", "error", err)
		s.Clear(ctx)
		return nil
	}

	s.mu.Lock()
	s.accessToken = string(access)
	s.refreshToken = string(refresh)
	s.user = &u
	s.mu.Unlock()
	return nil
}

// SetSession installs a full session atomically: all three persisted copies
// are written in one transaction, and the in-memory state flips only after
// the write succeeds.
func (s *Store) SetSession(ctx context.Context, accessToken, refreshToken string, u User) error {
	rawUser, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to serialize user: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, keyAccessToken, []byte(accessToken)); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyRefreshToken, []byte(refreshToken)); err != nil {
			return err
		}
		return repo.Set(ctx, keyUser, rawUser)
	})
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.user = &u
	s.mu.Unlock()
	return nil
}

// SetAccessToken replaces the access token only, preserving the refresh
// token and user. A cleared store refuses the write: a refresh that resolves
// after teardown must not re-establish credentials.
func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	s.mu.RLock()
	active := s.user != nil
	s.mu.RUnlock()
	if !active {
		return common.ErrNotAuthenticated
	}

	if err := s.repo(s.db).Set(ctx, keyAccessToken, []byte(token)); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}

	s.mu.Lock()
	// Re-check under the write lock: teardown may have run in between.
	if s.user == nil {
		s.mu.Unlock()
		s.wipePersisted(ctx)
		return common.ErrNotAuthenticated
	}
	s.accessToken = token
	s.mu.Unlock()
	return nil
}

// UpdateUser merges profile changes into the stored user and re-persists it.
func (s *Store) UpdateUser(ctx context.Context, firstName, lastName string) (*User, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil, common.ErrNotAuthenticated
	}
	updated := *s.user
	updated.FirstName = firstName
	updated.LastName = lastName
	s.user = &updated
	s.mu.Unlock()

	rawUser, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize user: %w", err)
	}
	if err := s.repo(s.db).Set(ctx, keyUser, rawUser); err != nil {
		return nil, fmt.Errorf("failed to persist user: %w", err)
	}
	result := updated
	return &result, nil
}

// Clear wipes the session unconditionally. It never fails: the in-memory
// fields are dropped first, then the persisted copies are removed on a
// best-effort basis (a storage error is logged, not returned).
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.mu.Unlock()

	s.wipePersisted(ctx)
}

func (s *Store) wipePersisted(ctx context.Context) {
	repo := s.repo(s.db)
	for _, key := range []string{keyAccessToken, keyRefreshToken, keyUser} {
		if err := repo.Delete(ctx, key); err != nil {
			s.log.Warn(ctx, "failed to remove persisted credential", "key", key, "error", err)
		}
	}
}

// AccessToken returns the current access token, or "" when logged out.
// The request gateway reads this fresh at send time.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token, or "" when none is held.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// User returns a copy of the authenticated profile, or nil when logged out.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a session is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != "" && s.user != nil
}

// Begin marks the start of an auth attempt: loading on, last error reset.
func (s *Store) Begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()
}

// Fail records a failed auth attempt.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	s.loading = false
	s.lastErr = err
	s.mu.Unlock()
}

// Succeed records a completed auth attempt.
func (s *Store) Succeed() {
	s.mu.Lock()
	s.loading = false
	s.lastErr = nil
	s.mu.Unlock()
}

// Status returns the loading flag and the error of the last failed attempt,
// nil after a success or Begin.
func (s *Store) Status() (loading bool, lastErr error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading, s.lastErr
}
