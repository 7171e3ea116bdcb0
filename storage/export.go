package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/crypto/scrypt"
	"golang.org/x/sync/errgroup"
)

// An export bundle carries every key in the store as a single
// passphrase-encrypted file, so data can move between machines or
// between the file and sqlite backends.

const (
	exportVersion  = 1
	exportSaltSize = 16

	// scrypt parameters (interactive profile)
	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

type exportBundle struct {
	Version int               `json:"version"`
	Entries map[string]string `json:"entries"`
}

func deriveKey(passphrase string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, 32)
}

// Export writes every key/value pair in the store to path, encrypted
// with a key derived from passphrase. The file layout is
// salt || nonce || ciphertext.
func Export(store Store, path, passphrase string) error {
	keys, err := store.Keys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	entries := make(map[string]string, len(keys))
	var mu sync.Mutex
	var g errgroup.Group
	for _, key := range keys {
		g.Go(func() error {
			value, err := store.Get(key)
			if err != nil {
				return fmt.Errorf("failed to read %q: %w", key, err)
			}
			mu.Lock()
			entries[key] = value
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	plaintext, err := json.Marshal(exportBundle{Version: exportVersion, Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}

	salt := make([]byte, exportSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := append(salt, nonce...)
	out = gcm.Seal(out, nonce, plaintext, nil)

	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// Import decrypts a bundle previously written by Export and writes
// every entry into the store, overwriting existing keys.
func Import(store Store, path, passphrase string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read export file: %w", err)
	}
	if len(raw) < exportSaltSize {
		return fmt.Errorf("export file too short")
	}

	salt := raw[:exportSaltSize]
	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}
	if len(raw) < exportSaltSize+gcm.NonceSize() {
		return fmt.Errorf("export file too short")
	}

	nonce := raw[exportSaltSize : exportSaltSize+gcm.NonceSize()]
	ciphertext := raw[exportSaltSize+gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("failed to decrypt bundle (wrong passphrase?): %w", err)
	}

	var bundle exportBundle
	if err := json.Unmarshal(plaintext, &bundle); err != nil {
		return fmt.Errorf("failed to decode bundle: %w", err)
	}
	if bundle.Version != exportVersion {
		return fmt.Errorf("unsupported bundle version %d", bundle.Version)
	}

	for key, value := range bundle.Entries {
		if err := store.Set(key, value); err != nil {
			return fmt.Errorf("failed to restore %q: %w", key, err)
		}
	}
	return nil
}
