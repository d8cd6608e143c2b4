package storage

import (
	"context"
	"errors"

	"github.com/zalando/go-keyring"
)

// Keyring stores values in the OS secret service (Keychain, Credential
// Manager, Secret Service), one secret per key under Service.
type Keyring struct {
	Service string
}

// NewKeyring returns a keyring-backed store for the given service name.
func NewKeyring(service string) *Keyring {
	return &Keyring{Service: service}
}

func (k *Keyring) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, err := keyring.Get(k.Service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (k *Keyring) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return keyring.Set(k.Service, key, value)
}
