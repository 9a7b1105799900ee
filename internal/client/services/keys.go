package services

import (
	"context"
	"fmt"

	"lexmail/internal/client/api"
	"lexmail/internal/client/session"
	"lexmail/internal/client/vault"
	"lexmail/internal/common"
	"lexmail/internal/cryptox"
	"lexmail/internal/logging"
)

// KeyService manages the vault's PGP key material: fetching the encrypted
// pair from the server, unlocking it into volatile memory, and locking it
// again. It never writes session state.
type KeyService struct {
	client api.Client
	store  *session.Store
	vault  *vault.Vault
	log    logging.Logger
}

func NewKeyService(client api.Client, store *session.Store, v *vault.Vault, log logging.Logger) *KeyService {
	if log == nil {
		log = logging.Discard()
	}
	return &KeyService{client: client, store: store, vault: v, log: log}
}

// Fetch loads the public and encrypted private key from the server into the
// vault. Requires an active session; never touches decrypted material.
func (k *KeyService) Fetch(ctx context.Context) (vault.Snapshot, error) {
	if !k.store.IsAuthenticated() {
		return vault.Snapshot{}, &api.KeyFetchError{Err: common.ErrNotAuthenticated}
	}

	keys, err := k.client.MyKeys(ctx)
	if err != nil {
		return vault.Snapshot{}, err
	}

	k.vault.SetKeys(keys.PublicKey, keys.PrivateKeyEncrypted)
	k.log.Info(ctx, "key material fetched")
	return k.vault.Snapshot(), nil
}

// Import installs a key pair generated outside the vault (client-side key
// generation). The public key must parse; the pair overwrites whatever was
// held before.
func (k *KeyService) Import(publicKey, encryptedPrivateKey string) (fingerprint string, err error) {
	fingerprint, err = cryptox.PublicKeyFingerprint(publicKey)
	if err != nil {
		return "", fmt.Errorf("refusing to import key pair: %w", err)
	}
	k.vault.SetKeys(publicKey, encryptedPrivateKey)
	return fingerprint, nil
}

// SetPassword stores the unlock password in the vault's volatile memory.
func (k *KeyService) SetPassword(password []byte) {
	k.vault.SetPassword(password)
}

// Unlock decrypts the held private key with the vault password and places
// the plaintext form in volatile memory. The password copy is wiped before
// returning.
func (k *KeyService) Unlock(ctx context.Context) error {
	_, encrypted := k.vault.Keys()
	if encrypted == "" {
		return common.ErrNoKeys
	}

	password := k.vault.Password()
	defer common.WipeByteArray(password)

	decrypted, err := cryptox.DecryptPrivateKey(encrypted, password)
	if err != nil {
		return err
	}
	k.vault.SetDecryptedKey([]byte(decrypted))
	k.log.Info(ctx, "private key unlocked")
	return nil
}

// Lock erases the decrypted private key. Callable at any time.
func (k *KeyService) Lock() {
	k.vault.ClearDecryptedKey()
}
