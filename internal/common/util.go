package common

// WipeByteArray overwrites the buffer with zeros. Safe to call with nil.
// Callers use it to erase passwords and decrypted key material as soon as
// they are no longer needed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
