package qsdk

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadConfig_ProjectConfig(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	// Create tripal.yaml in project root
	projectConfig := `
baseUrl: http://tripal.example.org/
user: admin
version: 2
pollInterval: 250ms
`
	os.WriteFile("tripal.yaml", []byte(projectConfig), 0644)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.BaseURL != "http://tripal.example.org" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.BaseURL)
	}
	if cfg.User != "admin" {
		t.Errorf("Expected user admin, got %s", cfg.User)
	}
	if cfg.Version != 2 {
		t.Errorf("Expected version 2, got %d", cfg.Version)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("Expected pollInterval 250ms, got %s", cfg.PollInterval)
	}
}

func TestLoadConfig_LocalOverride(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	projectConfig := `
baseUrl: http://tripal.example.org
version: 3
`
	os.WriteFile("tripal.yaml", []byte(projectConfig), 0644)

	// Create local override
	os.MkdirAll(ConfigRoot, 0755)
	localConfig := `
baseUrl: http://localhost:8080
cache:
  addr: localhost:6379
  ttl: 1m
`
	os.WriteFile(filepath.Join(ConfigRoot, "config.yaml"), []byte(localConfig), 0644)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// Local override should win
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("Expected baseUrl http://localhost:8080 (from local override), got %s", cfg.BaseURL)
	}
	if cfg.Version != 3 {
		t.Errorf("Expected version 3 (from project config), got %d", cfg.Version)
	}
	if cfg.Cache.Addr != "localhost:6379" || cfg.Cache.TTL != time.Minute {
		t.Errorf("Unexpected cache config: %+v", cfg.Cache)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	// No config files - should use defaults
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.BaseURL != "http://localhost" {
		t.Errorf("Expected default baseUrl http://localhost, got %s", cfg.BaseURL)
	}
	if cfg.Version != 3 {
		t.Errorf("Expected default version 3, got %d", cfg.Version)
	}
	if cfg.PollInterval != time.Second {
		t.Errorf("Expected default pollInterval 1s, got %s", cfg.PollInterval)
	}
	if !cfg.RunJobs {
		t.Error("Expected runJobs to default to true")
	}
	if cfg.Cache.Addr != "" {
		t.Errorf("Expected cache disabled by default, got %s", cfg.Cache.Addr)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	os.WriteFile("tripal.yaml", []byte("user: admin\n"), 0644)
	t.Setenv("TRIPAL_USER", "curator")
	t.Setenv("TRIPAL_CACHE_ADDR", "valkey:6379")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.User != "curator" {
		t.Errorf("Expected env to override file, got %s", cfg.User)
	}
	if cfg.Cache.Addr != "valkey:6379" {
		t.Errorf("Expected nested env key to apply, got %s", cfg.Cache.Addr)
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	customConfig := `
baseUrl: http://custom.example.org:9000
version: 2
`
	customPath := filepath.Join(tempDir, "custom-config.yaml")
	os.WriteFile(customPath, []byte(customConfig), 0644)

	cfg, err := LoadConfig(customPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.BaseURL != "http://custom.example.org:9000" {
		t.Errorf("Expected baseUrl http://custom.example.org:9000, got %s", cfg.BaseURL)
	}
	if cfg.ConfigFileUsed() != customPath {
		t.Errorf("Expected config file %s, got %s", customPath, cfg.ConfigFileUsed())
	}
}

func TestLoadConfig_RejectsUnknownVersion(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	os.WriteFile("tripal.yaml", []byte("version: 4\n"), 0644)

	if _, err := LoadConfig(""); err == nil {
		t.Fatal("Expected error for version 4")
	}
}

func TestBindFlags_Precedence(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	os.WriteFile("tripal.yaml", []byte("baseUrl: http://from-file\n"), 0644)
	t.Setenv("TRIPAL_BASEURL", "http://from-env")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.BaseURL != "http://from-env" {
		t.Fatalf("Expected env to win over file, got %s", cfg.BaseURL)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("base-url", "", "")
	fs.Int("tripal-version", 3, "")
	if err := fs.Parse([]string{"--base-url", "http://from-flag/"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	err = cfg.BindFlags(map[string]*pflag.Flag{
		BaseUrlKey: fs.Lookup("base-url"),
		VersionKey: fs.Lookup("tripal-version"),
		UserKey:    nil,
	})
	if err != nil {
		t.Fatalf("BindFlags failed: %v", err)
	}

	if cfg.BaseURL != "http://from-flag" {
		t.Errorf("Expected flag to win, got %s", cfg.BaseURL)
	}
	if cfg.Version != 3 {
		t.Errorf("Expected unchanged flag to leave default version, got %d", cfg.Version)
	}
}
