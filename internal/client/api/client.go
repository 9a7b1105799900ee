// Package api implements the request gateway: the single chokepoint through
// which every portal call passes. The gateway stamps outbound requests with
// the current bearer token, retries a 401 exactly once after a refresh-token
// exchange, and escalates a rejected exchange to full session teardown.
package api

import (
	"context"
	"io"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the registration request body.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResponse is what login and registration return: the token pair plus
// the authenticated profile.
type AuthResponse struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

// ProfileUpdate is the profile mutation request body.
type ProfileUpdate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// KeysResponse is the user's PGP key material as stored on the server.
type KeysResponse struct {
	PublicKey           string `json:"public_key"`
	PrivateKeyEncrypted string `json:"private_key_encrypted"`
}

// TokenStore is the gateway's view of the credential store. The bearer
// token is read through it fresh at send time, and the refresh coordinator
// writes the replacement access token back through it.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(ctx context.Context, token string) error
}

// Client is the portal API surface the services depend on.
type Client interface {
	Login(ctx context.Context, creds Credentials) (*AuthResponse, error)
	Register(ctx context.Context, reg Registration) (*AuthResponse, error)
	Refresh(ctx context.Context) error
	UpdateProfile(ctx context.Context, upd ProfileUpdate) error
	DeleteAccount(ctx context.Context) error
	MyKeys(ctx context.Context) (*KeysResponse, error)

	// Get issues an authenticated JSON GET; collaborators outside the
	// session core (mailbox, directory views) call through it.
	Get(ctx context.Context, path string, out any) error

	// Upload issues an authenticated POST whose content type is supplied
	// by the caller (a multipart writer negotiates its own boundary); the
	// gateway never forces one.
	Upload(ctx context.Context, path, contentType string, body io.Reader, out any) error

	// UseTokens installs the credential source on the shared transport
	// configuration; ClearAuthorization removes it so no request sent
	// after teardown carries a stale token.
	UseTokens(tokens TokenStore)
	ClearAuthorization()
}
