// Package vault implements the key vault: the process-wide owner of the PGP
// key material used by the encrypted-mail feature.
//
// The vault draws a hard line between two forms of the private key. The
// encrypted form (and the public key) may be persisted or shipped to the
// server. The decrypted form and the unlock password exist only in process
// memory: they never appear in Snapshot, the only serializable view, and
// are wiped on lock and on teardown.
package vault

import (
	"sync"

	"lexmail/internal/common"
)

// Snapshot is the persistable view of the vault. It deliberately carries
// only the fields that are safe at rest.
type Snapshot struct {
	PublicKey           string `json:"public_key,omitempty"`
	EncryptedPrivateKey string `json:"private_key_encrypted,omitempty"`
}

// Vault holds the key material singleton.
type Vault struct {
	mu                  sync.RWMutex
	publicKey           string
	encryptedPrivateKey string
	decryptedPrivateKey []byte
	unlockPassword      []byte
}

func New() *Vault {
	return &Vault{}
}

// SetKeys overwrites the public and encrypted private key unconditionally,
// last writer wins. Used both for server-fetched and freshly generated keys.
// Decrypted material from a previous pair is dropped: it no longer matches.
func (v *Vault) SetKeys(publicKey, encryptedPrivateKey string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.publicKey = publicKey
	v.encryptedPrivateKey = encryptedPrivateKey
	v.wipeDecryptedLocked()
}

// Keys returns the persistable key pair.
func (v *Vault) Keys() (publicKey, encryptedPrivateKey string) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.publicKey, v.encryptedPrivateKey
}

// HasKeys reports whether an encrypted key pair is held.
func (v *Vault) HasKeys() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.publicKey != "" && v.encryptedPrivateKey != ""
}

// SetPassword stores the unlock password in volatile memory only. The
// source application persisted it next to the encrypted key; that defeats
// encryption at rest, so here it lives and dies with the process.
func (v *Vault) SetPassword(password []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	common.WipeByteArray(v.unlockPassword)
	v.unlockPassword = append([]byte(nil), password...)
}

// Password returns a copy of the unlock password, or nil when unset.
func (v *Vault) Password() []byte {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.unlockPassword == nil {
		return nil
	}
	return append([]byte(nil), v.unlockPassword...)
}

// SetDecryptedKey installs plaintext private key material. Together with
// ClearDecryptedKey this is the only write path for the volatile form; the
// vault never derives it on its own.
func (v *Vault) SetDecryptedKey(key []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	common.WipeByteArray(v.decryptedPrivateKey)
	v.decryptedPrivateKey = append([]byte(nil), key...)
}

// DecryptedKey returns a copy of the plaintext private key, or
// common.ErrKeysLocked when only the encrypted form is held.
func (v *Vault) DecryptedKey() ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.decryptedPrivateKey == nil {
		return nil, common.ErrKeysLocked
	}
	return append([]byte(nil), v.decryptedPrivateKey...), nil
}

// HasDecryptedKey reports whether plaintext key material is currently held.
func (v *Vault) HasDecryptedKey() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.decryptedPrivateKey != nil
}

// ClearDecryptedKey wipes the plaintext private key. Callable at any time,
// idempotent.
func (v *Vault) ClearDecryptedKey() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.wipeDecryptedLocked()
}

// ClearAll wipes every field, persistable and volatile. Called only by
// session teardown.
func (v *Vault) ClearAll() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.publicKey = ""
	v.encryptedPrivateKey = ""
	v.wipeDecryptedLocked()
	common.WipeByteArray(v.unlockPassword)
	v.unlockPassword = nil
}

func (v *Vault) wipeDecryptedLocked() {
	common.WipeByteArray(v.decryptedPrivateKey)
	v.decryptedPrivateKey = nil
}

// Snapshot returns the persistable view. Volatile fields are not part of it
// by construction.
func (v *Vault) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Snapshot{
		PublicKey:           v.publicKey,
		EncryptedPrivateKey: v.encryptedPrivateKey,
	}
}
