package cli

import (
	"bufio"
	"context"
	"database/sql"
	"os"

	"lexmail/internal/client/api"
	"lexmail/internal/client/config"
	"lexmail/internal/client/services"
	"lexmail/internal/client/session"
	"lexmail/internal/client/vault"
	"lexmail/internal/logging"

	_ "modernc.org/sqlite"
)

// authAPI is the slice of the auth service the CLI commands need.
// services.AuthService satisfies it; tests can provide a stub.
type authAPI interface {
	Bootstrap(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*session.User, error)
	Register(ctx context.Context, reg api.Registration) (*session.User, error)
	UpdateProfile(ctx context.Context, firstName, lastName string) (*session.User, error)
	DeleteAccount(ctx context.Context) error
	Logout(ctx context.Context)
}

// keyAPI is the slice of the key service the CLI commands need.
type keyAPI interface {
	Fetch(ctx context.Context) (vault.Snapshot, error)
	Import(publicKey, encryptedPrivateKey string) (string, error)
	SetPassword(password []byte)
	Unlock(ctx context.Context) error
	Lock()
}

// sessionInfo is the read-only view of the credential store used for the
// prompt and command gating.
type sessionInfo interface {
	IsAuthenticated() bool
	User() *session.User
}

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB
	store  sessionInfo
	vault  *vault.Vault
	auth   authAPI
	keys   keyAPI
	reader *bufio.Reader
}

// NewApp wires the full client: local database, credential store, key vault,
// HTTP transport and the services on top. The transport's auth failure
// handler is bound to session teardown, so a rejected token refresh logs the
// user out everywhere at once.
func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	store := session.NewStore(db, log)
	v := vault.New()

	apiClient := api.NewHTTPClient(cfg.PortalBaseURL, cfg.RequestTimeout, log)

	authService := services.NewAuthService(apiClient, store, v, log)
	keyService := services.NewKeyService(apiClient, store, v, log)

	apiClient.SetAuthFailureHandler(func(ctx context.Context) {
		authService.Logout(ctx)
	})

	return &App{
		config: cfg,
		log:    log,
		db:     db,
		store:  store,
		vault:  v,
		auth:   authService,
		keys:   keyService,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// Run restores any persisted session and hands control to the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	if err := a.auth.Bootstrap(ctx); err != nil {
		a.log.Warn(ctx, "could not restore previous session", "error", err)
	}

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.store.IsAuthenticated()
}
