package vault

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"lexmail/internal/common"
)

func TestVault_SetKeysLastWriterWins(t *testing.T) {
	v := New()

	v.SetKeys("PUB1", "ENC1")
	v.SetKeys("PUB2", "ENC2")

	pub, enc := v.Keys()
	require.Equal(t, "PUB2", pub)
	require.Equal(t, "ENC2", enc)
	require.True(t, v.HasKeys())
}

func TestVault_SetKeysDropsStaleDecryptedKey(t *testing.T) {
	v := New()
	v.SetKeys("PUB1", "ENC1")
	v.SetDecryptedKey([]byte("plaintext"))

	v.SetKeys("PUB2", "ENC2")

	_, err := v.DecryptedKey()
	require.ErrorIs(t, err, common.ErrKeysLocked)
}

func TestVault_DecryptedKeyLifecycle(t *testing.T) {
	v := New()

	_, err := v.DecryptedKey()
	require.ErrorIs(t, err, common.ErrKeysLocked)

	v.SetDecryptedKey([]byte("plaintext"))
	require.True(t, v.HasDecryptedKey())

	got, err := v.DecryptedKey()
	require.NoError(t, err)
	require.Equal(t, []byte("plaintext"), got)

	v.ClearDecryptedKey()
	require.False(t, v.HasDecryptedKey())
	_, err = v.DecryptedKey()
	require.ErrorIs(t, err, common.ErrKeysLocked)

	// Idempotent.
	v.ClearDecryptedKey()
}

func TestVault_DecryptedKeyReturnsCopy(t *testing.T) {
	v := New()
	v.SetDecryptedKey([]byte("plaintext"))

	got, err := v.DecryptedKey()
	require.NoError(t, err)
	common.WipeByteArray(got)

	again, err := v.DecryptedKey()
	require.NoError(t, err)
	require.Equal(t, []byte("plaintext"), again)
}

func TestVault_Password(t *testing.T) {
	v := New()
	require.Nil(t, v.Password())

	v.SetPassword([]byte("secret"))
	require.Equal(t, []byte("secret"), v.Password())

	v.SetPassword([]byte("other"))
	require.Equal(t, []byte("other"), v.Password())
}

func TestVault_ClearAll(t *testing.T) {
	v := New()
	v.SetKeys("PUB", "ENC")
	v.SetPassword([]byte("secret"))
	v.SetDecryptedKey([]byte("plaintext"))

	v.ClearAll()

	pub, enc := v.Keys()
	require.Empty(t, pub)
	require.Empty(t, enc)
	require.False(t, v.HasKeys())
	require.Nil(t, v.Password())
	_, err := v.DecryptedKey()
	require.ErrorIs(t, err, common.ErrKeysLocked)
}

func TestVault_SnapshotNeverContainsVolatileMaterial(t *testing.T) {
	v := New()
	v.SetKeys("PUB", "ENC")
	v.SetPassword([]byte("hunter2"))
	v.SetDecryptedKey([]byte("plaintext"))

	raw, err := json.Marshal(v.Snapshot())
	require.NoError(t, err)

	require.Contains(t, string(raw), "PUB")
	require.Contains(t, string(raw), "ENC")
	require.NotContains(t, string(raw), "plaintext")
	require.NotContains(t, string(raw), "hunter2")
}
