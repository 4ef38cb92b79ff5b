package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const CredentialsFile = ".credentials"

// SaveAppPassword stores the app password base64-encoded next to the config.
// This keeps it out of casual view; it is not encryption.
func SaveAppPassword(dir, password string) error {
	enc := base64.StdEncoding.EncodeToString([]byte(password))
	return writeLocked(filepath.Join(dir, CredentialsFile), []byte(enc), 0o600)
}

// LoadAppPassword returns "" when no credentials file exists.
func LoadAppPassword(dir string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, CredentialsFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	dec, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(b)))
	if err != nil {
		return "", fmt.Errorf("decode credentials: %w", err)
	}
	return string(dec), nil
}
