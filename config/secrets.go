package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
)

// KeyringService identifies our namespace in the OS credential store.
const KeyringService = "querymaster"

// ErrSecretNotFound is returned by SecretStore.Get for unknown names.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore keeps provider API keys outside the config file.
type SecretStore interface {
	Get(name string) (string, error)
	Set(name, value string) error
	Delete(name string) error
}

// Keyring is a SecretStore backed by the OS keychain.
type Keyring struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// OpenKeyring opens the OS keyring. Backends that would prompt for a
// password on every run (the encrypted file backend) are excluded.
func OpenKeyring() (*Keyring, error) {
	var allowed []keyring.BackendType
	for _, b := range keyring.AvailableBackends() {
		if b == keyring.FileBackend {
			continue
		}
		allowed = append(allowed, b)
	}
	if len(allowed) == 0 {
		return nil, errors.New("no OS keyring available")
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:     KeyringService,
		AllowedBackends: allowed,
		PassPrefix:      KeyringService,
		WinCredPrefix:   KeyringService,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return &Keyring{ring: ring}, nil
}

func itemKey(name string) string { return name + "_api_key" }

// Get returns the stored secret for name.
func (k *Keyring) Get(name string) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	it, err := k.ring.Get(itemKey(name))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrSecretNotFound
		}
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrSecretNotFound
	}
	return string(it.Data), nil
}

// Set stores value under name.
func (k *Keyring) Set(name, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.ring.Set(keyring.Item{
		Key:   itemKey(name),
		Data:  []byte(value),
		Label: KeyringService + " " + name + " API key",
	})
}

// Delete removes the secret stored under name.
func (k *Keyring) Delete(name string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.ring.Remove(itemKey(name)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// MapStore is an in-memory SecretStore, handy in tests.
type MapStore map[string]string

func (m MapStore) Get(name string) (string, error) {
	v, ok := m[name]
	if !ok {
		return "", ErrSecretNotFound
	}
	return v, nil
}

func (m MapStore) Set(name, value string) error {
	m[name] = value
	return nil
}

func (m MapStore) Delete(name string) error {
	delete(m, name)
	return nil
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
