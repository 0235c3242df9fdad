package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CredentialStore persists the single opaque credential of a logged-in
// client. An empty token from Load means logged out.
type CredentialStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileCredentials keeps the credential in a JSON file readable only by the
// owner.
type FileCredentials struct {
	Path string
}

type credentialFile struct {
	Token string `json:"token"`
}

// Load returns the stored token. A missing file is logged out; an unreadable
// or malformed one is removed and also treated as logged out.
func (f FileCredentials) Load() (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read credentials: %w", err)
	}

	var cf credentialFile
	if err := json.Unmarshal(data, &cf); err != nil || cf.Token == "" {
		if rmErr := f.Clear(); rmErr != nil {
			return "", rmErr
		}
		return "", nil
	}
	return cf.Token, nil
}

// Save replaces the stored token atomically.
func (f FileCredentials) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	data, err := json.Marshal(credentialFile{Token: token})
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("save credentials: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (f FileCredentials) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
