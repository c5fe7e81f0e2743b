package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the engine's secrets in the OS keychain.
	KeyringService = "fundfinder"

	AdminAccount  = "fundfinder:admin"
	AdminTokenEnv = "FUNDFINDER_ADMIN_TOKEN"
)

var ErrNoAdminToken = errors.New("admin token not found (run `engine admin-token set` or set " + AdminTokenEnv + ")")

// GetAdminToken reads the token guarding admin endpoints.
func GetAdminToken() (string, error) {
	// 1) Keyring first (recommended)
	tok, err := keyring.Get(KeyringService, AdminAccount)
	if err == nil && strings.TrimSpace(tok) != "" {
		return tok, nil
	}

	// 2) Env for headless hosts without a keychain
	if tok := strings.TrimSpace(os.Getenv(AdminTokenEnv)); tok != "" {
		return tok, nil
	}
	return "", ErrNoAdminToken
}

func SetAdminToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	if len(token) < 16 {
		return errors.New("token must be at least 16 characters")
	}
	return keyring.Set(KeyringService, AdminAccount, token)
}

func DeleteAdminToken() error {
	err := keyring.Delete(KeyringService, AdminAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// NewAdminToken returns a random hex token of 2n characters.
func NewAdminToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
