package crunchyroll

import (
	"errors"

	"github.com/malcr/malcr/constant"
	"github.com/zalando/go-keyring"
)

// SessionStore persists a refresh token.
type SessionStore interface {
	Load() (string, error)
	Save(refreshToken string) error
	Delete() error
}

// KeyringStore keeps the refresh token in the system keyring, under the account email.
type KeyringStore struct {
	User string
}

func (k KeyringStore) service() string {
	return constant.App + ".crunchyroll"
}

// Load returns the stored refresh token, keyring.ErrNotFound when there is none.
func (k KeyringStore) Load() (string, error) {
	return keyring.Get(k.service(), k.User)
}

// Save stores the refresh token, replacing any previous one.
func (k KeyringStore) Save(refreshToken string) error {
	return keyring.Set(k.service(), k.User, refreshToken)
}

// Delete forgets the stored token. A missing entry is not an error.
func (k KeyringStore) Delete() error {
	if err := keyring.Delete(k.service(), k.User); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
