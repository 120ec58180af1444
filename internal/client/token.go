package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ErrNoToken means the user has not logged in (or logged out).
var ErrNoToken = errors.New("no token (login required)")

type tokenFile struct {
	Token   string    `json:"token"`
	Email   string    `json:"email,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// ConfigDir is $XDG_CONFIG_HOME/contact-keeper, falling back to ~/.config.
func ConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "contact-keeper")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "contact-keeper")
}

// TokenPath is where the session token lives.
func TokenPath() string { return filepath.Join(ConfigDir(), "token.json") }

// SaveToken stores tok for later commands, readable only by the user.
func SaveToken(tok, email string) error {
	if err := os.MkdirAll(ConfigDir(), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(tokenFile{Token: tok, Email: email, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(TokenPath(), b, 0o600)
}

// LoadToken returns the saved token or ErrNoToken.
func LoadToken() (string, error) {
	b, err := os.ReadFile(TokenPath())
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.Token == "" {
		return "", ErrNoToken
	}
	return tf.Token, nil
}

// ClearToken discards the session. A missing file is not an error.
func ClearToken() error {
	err := os.Remove(TokenPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
