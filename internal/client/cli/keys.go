package cli

import (
	"context"
	"fmt"
	"os"

	"lexmail/internal/common"
)

// readFile is a test seam for os.ReadFile, used by ImportKeys.
var readFile = os.ReadFile

// FetchKeys loads the PGP key pair from the server into the vault.
func (a *App) FetchKeys(ctx context.Context) error {
	snap, err := a.keys.Fetch(ctx)
	if err != nil {
		printlnFn("Key fetch failed:", err.Error())
		return err
	}

	if snap.PublicKey == "" {
		printlnFn("No key pair on the server yet; use importkeys to install one")
		return nil
	}
	printlnFn("Key pair fetched; private key is locked")
	return nil
}

// ImportKeys installs a locally generated key pair from two armored files.
func (a *App) ImportKeys(ctx context.Context) error {
	pubPath, err := getSimpleText(a.reader, "Path to armored public key file", os.Stdout)
	if err != nil {
		return err
	}
	privPath, err := getSimpleText(a.reader, "Path to armored encrypted private key file", os.Stdout)
	if err != nil {
		return err
	}

	publicKey, err := readFile(pubPath)
	if err != nil {
		printlnFn("Cannot read public key:", err.Error())
		return err
	}
	privateKey, err := readFile(privPath)
	if err != nil {
		printlnFn("Cannot read private key:", err.Error())
		return err
	}

	fingerprint, err := a.keys.Import(string(publicKey), string(privateKey))
	if err != nil {
		printlnFn("Import failed:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Imported key pair, fingerprint %s", fingerprint))
	return nil
}

// Unlock asks for the key password and decrypts the private key into
// volatile memory. The typed password is wiped once the attempt finishes.
func (a *App) Unlock(ctx context.Context) error {
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	a.keys.SetPassword(password)
	if err := a.keys.Unlock(ctx); err != nil {
		printlnFn("Unlock failed:", err.Error())
		return err
	}

	printlnFn("Private key unlocked")
	return nil
}

// Lock erases the decrypted private key from memory.
func (a *App) Lock(ctx context.Context) error {
	a.keys.Lock()
	printlnFn("Private key locked")
	return nil
}
