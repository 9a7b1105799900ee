// Package services contains the application services of the lexmail client.
// This file defines the auth service: the owner of the session lifecycle
// from login through teardown.
package services

import (
	"context"
	"time"

	"lexmail/internal/client/api"
	"lexmail/internal/client/session"
	"lexmail/internal/client/vault"
	"lexmail/internal/common"
	"lexmail/internal/logging"
)

// AuthService drives the credential store through its lifecycle. It is the
// only component with joint write access to both the credential store and
// the key vault: logout clears them together.
type AuthService struct {
	client api.Client
	store  *session.Store
	vault  *vault.Vault
	log    logging.Logger
}

func NewAuthService(client api.Client, store *session.Store, v *vault.Vault, log logging.Logger) *AuthService {
	if log == nil {
		log = logging.Discard()
	}
	return &AuthService{client: client, store: store, vault: v, log: log}
}

// Bootstrap restores a persisted session at startup. When the restored
// access token has already expired it is exchanged right away; a rejected
// exchange tears the stale session down, which is the desired outcome.
func (a *AuthService) Bootstrap(ctx context.Context) error {
	if err := a.store.Hydrate(ctx); err != nil {
		return err
	}
	if !a.store.IsAuthenticated() {
		return nil
	}
	a.client.UseTokens(a.store)

	if a.store.AccessTokenExpired(time.Now()) {
		if err := a.client.Refresh(ctx); err != nil {
			a.log.Warn(ctx, "persisted session is no longer valid", "error", err)
		}
	}
	return nil
}

// Login authenticates, installs the session atomically and makes the store
// the transport's credential source. On failure the attempt error is
// recorded in the store status and returned untouched.
func (a *AuthService) Login(ctx context.Context, email, password string) (*session.User, error) {
	a.store.Begin()

	resp, err := a.client.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		a.store.Fail(err)
		return nil, err
	}
	return a.installSession(ctx, resp)
}

// Register creates an account; a successful registration logs the user in.
func (a *AuthService) Register(ctx context.Context, reg api.Registration) (*session.User, error) {
	a.store.Begin()

	resp, err := a.client.Register(ctx, reg)
	if err != nil {
		a.store.Fail(err)
		return nil, err
	}
	return a.installSession(ctx, resp)
}

func (a *AuthService) installSession(ctx context.Context, resp *api.AuthResponse) (*session.User, error) {
	u := session.User{
		ID:        resp.ID,
		Email:     resp.Email,
		FirstName: resp.FirstName,
		LastName:  resp.LastName,
		IsStaff:   resp.IsStaff,
	}
	if err := a.store.SetSession(ctx, resp.Access, resp.Refresh, u); err != nil {
		a.store.Fail(err)
		return nil, err
	}
	a.client.UseTokens(a.store)
	a.store.Succeed()
	a.log.Info(ctx, "session established", "user_id", u.ID)
	return a.store.User(), nil
}

// Refresh exchanges the refresh token for a new access token. Exposed for
// callers outside the retry policy (bootstrap); shares its coalescing.
func (a *AuthService) Refresh(ctx context.Context) error {
	return a.client.Refresh(ctx)
}

// UpdateProfile pushes the change to the server, then merges it into the
// stored user and its persisted copy.
func (a *AuthService) UpdateProfile(ctx context.Context, firstName, lastName string) (*session.User, error) {
	if !a.store.IsAuthenticated() {
		return nil, common.ErrNotAuthenticated
	}
	upd := api.ProfileUpdate{FirstName: firstName, LastName: lastName}
	if err := a.client.UpdateProfile(ctx, upd); err != nil {
		return nil, err
	}
	return a.store.UpdateUser(ctx, firstName, lastName)
}

// DeleteAccount removes the account server-side. Teardown runs regardless
// of the server outcome: the account is gone either way.
func (a *AuthService) DeleteAccount(ctx context.Context) error {
	err := a.client.DeleteAccount(ctx)
	a.Logout(ctx)
	return err
}

// Logout is the session teardown. Local only, never fails, idempotent, and
// every step runs unconditionally: credential store (memory and persisted
// copies), key vault including volatile material, and the transport's
// credential source.
func (a *AuthService) Logout(ctx context.Context) {
	a.store.Clear(ctx)
	a.vault.ClearAll()
	a.client.ClearAuthorization()
	a.log.Info(ctx, "session torn down")
}
