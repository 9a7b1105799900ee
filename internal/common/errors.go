package common

import "errors"

var (
	// ErrNotAuthenticated is returned by operations that require an active
	// session when none is held.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrKeysLocked is returned when decrypted key material is requested
	// while the vault holds only the encrypted form.
	ErrKeysLocked = errors.New("private key is locked")

	// ErrNoKeys is returned when an operation needs key material that has
	// not been fetched or imported yet.
	ErrNoKeys = errors.New("no key material")
)
