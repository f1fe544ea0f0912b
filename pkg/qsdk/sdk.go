package qsdk

import (
	"fmt"
	"log/slog"
)

// Sdk is a small wrapper around Client with credentials baked in.
// It provides a minimal surface that CLI commands can use so they don't need
// to wire keyring + client + auth headers themselves.
type Sdk struct {
	Client  *Client
	Config  *Config
	BaseURL string
	User    string
}

// NewSdk returns a Client for the configured site. The password is taken from
// the config when set and from the OS keyring otherwise.
func NewSdk(cfg *Config, logger *slog.Logger) (*Sdk, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not initialized")
	}

	if logger == nil {
		logger = slog.Default()
	}

	password, err := ResolvePassword(cfg)
	if err != nil {
		// A missing secret service should not block anonymous requests.
		logger.Warn("could not read stored password", "user", cfg.User, "error", err)
	}

	c, err := NewClient(cfg.BaseURL,
		WithTimeout(cfg.HTTPTimeout),
		WithLogger(logger),
		WithRequestEditorFn(BasicAuth(cfg.User, password)),
	)
	if err != nil {
		return nil, err
	}

	return &Sdk{
		Client:  c,
		Config:  cfg,
		BaseURL: cfg.BaseURL,
		User:    cfg.User,
	}, nil
}

// ClearCredentials removes the stored password for the SDK's site and user.
func (s *Sdk) ClearCredentials() error {
	if s == nil || s.BaseURL == "" || s.User == "" {
		return nil
	}
	return DeletePassword(s.BaseURL, s.User)
}
