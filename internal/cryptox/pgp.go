// Package cryptox wraps the OpenPGP primitives the mail feature needs:
// decrypting a passphrase-protected private key into its plaintext armored
// form and inspecting armored public keys.
package cryptox

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
)

var (
	// ErrWrongPassphrase is returned when the supplied passphrase does not
	// unlock the private key.
	ErrWrongPassphrase = errors.New("wrong passphrase")

	// ErrNoPrivateKey is returned when the armored input contains no
	// private key material.
	ErrNoPrivateKey = errors.New("no private key in keyring")
)

// DecryptPrivateKey unlocks an armored, possibly passphrase-protected PGP
// private key and returns its decrypted form, re-armored. The result is
// plaintext key material and must only ever live in volatile memory.
//
// A key that was stored unprotected passes through unchanged apart from
// re-armoring; an empty passphrase is valid in that case.
func DecryptPrivateKey(armoredKey string, passphrase []byte) (string, error) {
	entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armoredKey))
	if err != nil {
		return "", fmt.Errorf("failed to read private keyring: %w", err)
	}

	var entity *openpgp.Entity
	for _, e := range entities {
		if e.PrivateKey != nil {
			entity = e
			break
		}
	}
	if entity == nil {
		return "", ErrNoPrivateKey
	}

	if entity.PrivateKey.Encrypted {
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return "", fmt.Errorf("%w: %v", ErrWrongPassphrase, err)
		}
	}
	for _, sk := range entity.Subkeys {
		if sk.PrivateKey != nil && sk.PrivateKey.Encrypted {
			if err := sk.PrivateKey.Decrypt(passphrase); err != nil {
				return "", fmt.Errorf("%w: %v", ErrWrongPassphrase, err)
			}
		}
	}

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
	if err != nil {
		return "", fmt.Errorf("failed to armor private key: %w", err)
	}
	if err := entity.SerializePrivate(w, nil); err != nil {
		return "", fmt.Errorf("failed to serialize private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish armor: %w", err)
	}

	return buf.String(), nil
}

// PublicKeyFingerprint parses an armored public key and returns the primary
// key fingerprint in upper-case hex.
func PublicKeyFingerprint(armoredKey string) (string, error) {
	entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armoredKey))
	if err != nil {
		return "", fmt.Errorf("failed to read public keyring: %w", err)
	}
	if len(entities) == 0 || entities[0].PrimaryKey == nil {
		return "", errors.New("no public key in keyring")
	}
	fp := entities[0].PrimaryKey.Fingerprint
	return strings.ToUpper(hex.EncodeToString(fp[:])), nil
}
