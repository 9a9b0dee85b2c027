package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

// KeySMTPPassword is the keyring entry holding the SMTP sender password.
const KeySMTPPassword = "smtp_password"

// Store reads and writes secrets in the system keyring.
type Store struct {
	ring keyring.Keyring
}

// Open returns a Store for serviceName, trying the native backends before the encrypted file.
func Open(serviceName string) (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/" + serviceName + "/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt(serviceName + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Store{ring: ring}, nil
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Get retrieves a credential value by key.
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (s *Store) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// ResolvePassword returns configured when non-empty, otherwise the keyring's SMTP password.
func ResolvePassword(configured string, s *Store) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if s == nil {
		return "", fmt.Errorf("SENDER_PASSWORD is not set and no keyring is available")
	}
	return s.Get(KeySMTPPassword)
}
