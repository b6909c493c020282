// Package credential persists the session snapshot in the system keyring.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName = "taskflow"
	sessionKey  = "session"
)

// Vault stores the serialized session under a single keyring key.
type Vault struct {
	ring keyring.Keyring
}

// Open returns a Vault backed by the first available system keyring,
// falling back to an encrypted file store under dir.
func Open(dir string) (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt("taskflow-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewVault(ring), nil
}

// NewVault wraps an already opened keyring.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// SaveSession stores blob, replacing any previous snapshot.
func (v *Vault) SaveSession(blob []byte) error {
	err := v.ring.Set(keyring.Item{
		Key:         sessionKey,
		Data:        blob,
		Label:       "taskflow session",
		Description: "signed-in taskflow user",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", sessionKey, err)
	}
	return nil
}

// LoadSession returns the stored snapshot. A missing snapshot yields nil
// and no error.
func (v *Vault) LoadSession() ([]byte, error) {
	item, err := v.ring.Get(sessionKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting credential %q: %w", sessionKey, err)
	}
	return item.Data, nil
}

// ClearSession removes the stored snapshot. Clearing an empty vault is not
// an error.
func (v *Vault) ClearSession() error {
	err := v.ring.Remove(sessionKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", sessionKey, err)
	}
	return nil
}
