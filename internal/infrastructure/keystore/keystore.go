package keystore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// FileStore keeps the bearer token in a single file with restricted
// permissions (0600). It is the on-device equivalent of a secure key-value
// store entry under a fixed key.
type FileStore struct {
	path string
}

// New creates a token store backed by the given file path.
func New(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the token, creating the parent directory with 0700 if needed.
func (f *FileStore) Save(token string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to move token file into place: %w", err)
	}

	return nil
}

// Load reads the stored token.
func (f *FileStore) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Clear removes the stored token. Clearing an absent token is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// Exists reports whether a token is stored.
func (f *FileStore) Exists() bool {
	info, err := os.Stat(f.path)
	return err == nil && !info.IsDir()
}

// ExpiresAt inspects the stored token's exp claim without verifying the
// signature. Validity is server-determined; this is display-only.
func (f *FileStore) ExpiresAt() (time.Time, error) {
	token, err := f.Load()
	if err != nil {
		return time.Time{}, err
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("token has no expiration claim")
	}

	return exp.Time, nil
}
