package qsdk

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const keyringService = "qtripal"

// normalizeKey converts a baseURL and user into a stable key name for keyring
// storage. Trailing slashes are trimmed and the URL lowercased so that
// https://tripal.example.org/ and https://tripal.example.org share an entry.
func normalizeKey(baseURL, user string) string {
	s := strings.TrimSpace(baseURL)
	s = strings.TrimRight(s, "/")
	s = strings.ToLower(s)
	return user + "@" + s
}

// SavePassword stores the site password in the OS keyring.
func SavePassword(baseURL, user, password string) error {
	return keyring.Set(keyringService, normalizeKey(baseURL, user), password)
}

// LoadPassword retrieves the password stored for the given site and user.
// A missing entry is reported as ("", nil).
func LoadPassword(baseURL, user string) (string, error) {
	pw, err := keyring.Get(keyringService, normalizeKey(baseURL, user))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return pw, err
}

// DeletePassword removes the stored password. It is a convenience for logout
// flows and ignores missing entries.
func DeletePassword(baseURL, user string) error {
	err := keyring.Delete(keyringService, normalizeKey(baseURL, user))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// ResolvePassword returns the configured password, falling back to the
// keyring when none is set in flags, env or config files.
func ResolvePassword(cfg *Config) (string, error) {
	if cfg.Password != "" || cfg.User == "" {
		return cfg.Password, nil
	}
	return LoadPassword(cfg.BaseURL, cfg.User)
}
