package qsdk

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CacheConfig points the biomaterial list cache at a Valkey/Redis server.
// An empty Addr disables caching.
type CacheConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type Config struct {
	BaseURL      string        `mapstructure:"baseUrl"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	Version      int           `mapstructure:"version"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
	RunJobs      bool          `mapstructure:"runJobs"`
	HTTPTimeout  time.Duration `mapstructure:"httpTimeout"`
	Cache        CacheConfig   `mapstructure:"cache"`
	LogFile      string        `mapstructure:"logFile"`

	v *viper.Viper // instance-specific viper
}

const (
	EnvPrefix  = "TRIPAL"
	ConfigName = "tripal"
	ConfigRoot = ".tripal"

	BaseUrlKey      = "baseUrl"
	UserKey         = "user"
	PasswordKey     = "password"
	VersionKey      = "version"
	PollIntervalKey = "pollInterval"
	RunJobsKey      = "runJobs"
	HTTPTimeoutKey  = "httpTimeout"
	CacheAddrKey    = "cache.addr"
	CachePassKey    = "cache.password"
	CacheDBKey      = "cache.db"
	CacheTTLKey     = "cache.ttl"
	LogFileKey      = "logFile"
)

// LoadConfig creates a new Config instance with its own viper
// This is the only way to load config (no global state)
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	} else {
		// Load project config (TRACKED) - tripal.yaml in current directory
		for _, name := range []string{"tripal.yaml", "tripal.yml", ".tripal.yaml"} {
			if _, err := os.Stat(name); err == nil {
				v.SetConfigFile(name)
				if err := v.ReadInConfig(); err == nil {
					break
				}
			}
		}

		// Merge local overrides (UNTRACKED) - .tripal/config.yaml
		localConfigPath := filepath.Join(ConfigRoot, "config.yaml")
		if _, err := os.Stat(localConfigPath); err == nil {
			v.SetConfigFile(localConfigPath)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("merging local config: %w", err)
			}
		}
	}

	setDefaults(v)

	cfg := &Config{v: v}
	if err := cfg.unmarshal(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BindFlags binds config keys to CLI flags and reloads the config so that
// flags set on the command line take precedence over env and files.
// Nil flags are skipped.
func (c *Config) BindFlags(bindings map[string]*pflag.Flag) error {
	for key, flag := range bindings {
		if flag == nil {
			continue
		}
		if err := c.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	}
	return c.unmarshal()
}

func (c *Config) unmarshal() error {
	v := c.v
	*c = Config{v: v}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Version != 2 && c.Version != 3 {
		return fmt.Errorf("unsupported tripal version %d (expected 2 or 3)", c.Version)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Every key gets a default so AutomaticEnv values reach Unmarshal.
	v.SetDefault(BaseUrlKey, "http://localhost")
	v.SetDefault(UserKey, "")
	v.SetDefault(PasswordKey, "")
	v.SetDefault(VersionKey, 3)
	v.SetDefault(PollIntervalKey, time.Second)
	v.SetDefault(RunJobsKey, true)
	v.SetDefault(HTTPTimeoutKey, 30*time.Second)
	v.SetDefault(CacheAddrKey, "")
	v.SetDefault(CachePassKey, "")
	v.SetDefault(CacheDBKey, 0)
	v.SetDefault(CacheTTLKey, 5*time.Minute)
	v.SetDefault(LogFileKey, "")
}

// ConfigFileUsed returns the config file that was used (if any)
func (c *Config) ConfigFileUsed() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}
