// Package config resolves advisor-chat settings.
//
// Sources are applied in order, each overriding the last: built-in defaults,
// the YAML config file, SSM parameters under ParamPrefix, then ADVISOR_*
// environment variables. Command-line flags are applied by the caller.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"advisor-chat/internal/integrations/paramstore"
)

const (
	appName = "advisor-chat"

	DefaultBaseURL = "http://127.0.0.1:5000"
	DefaultTimeout = 120 * time.Second

	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Environment variable names.
const (
	EnvBaseURL     = "ADVISOR_BASE_URL"
	EnvTimeout     = "ADVISOR_TIMEOUT"
	EnvLogFile     = "ADVISOR_LOG_FILE"
	EnvTheme       = "ADVISOR_THEME"
	EnvParamPrefix = "ADVISOR_PARAM_PREFIX"
)

// Config holds the resolved client settings.
type Config struct {
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	LogFile     string        `yaml:"log_file"`
	Theme       string        `yaml:"theme"`
	ParamPrefix string        `yaml:"param_prefix"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
		Theme:   ThemeDark,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/advisor-chat/config.yaml or its platform
// equivalent. It returns "" when no config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.yaml")
}

// DefaultLogFile is where the interactive UI writes its log.
func DefaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName+".log")
	}
	return filepath.Join(dir, appName, appName+".log")
}

// Options controls Load.
type Options struct {
	// File is an explicit config path. When empty DefaultPath is tried and a
	// missing file there is not an error.
	File string
	// ParamPrefix overrides the prefix from the file and environment.
	ParamPrefix string
	// NewLoader builds the SSM loader. It is only called when a prefix is set.
	NewLoader func(ctx context.Context) (paramstore.Loader, error)
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Load resolves the configuration from all sources except flags.
func Load(ctx context.Context, opts Options) (Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := Default()

	path, explicit := opts.File, opts.File != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	prefix := firstNonEmpty(opts.ParamPrefix, getenv(EnvParamPrefix), cfg.ParamPrefix)
	if prefix != "" {
		cfg.ParamPrefix = prefix
		if opts.NewLoader == nil {
			return Config{}, errors.New("config: parameter prefix set but no parameter loader configured")
		}
		loader, err := opts.NewLoader(ctx)
		if err != nil {
			return Config{}, fmt.Errorf("config: create parameter loader: %w", err)
		}
		settings, err := loader.LoadSettings(ctx, prefix)
		if err != nil {
			return Config{}, fmt.Errorf("config: load parameters: %w", err)
		}
		if err := cfg.ApplySettings(settings); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// ApplySettings overlays key/value settings such as those read from SSM.
// Unknown keys are ignored.
func (c *Config) ApplySettings(settings map[string]string) error {
	for key, value := range settings {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch key {
		case "base_url":
			c.BaseURL = value
		case "timeout":
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("config: parameter timeout: %w", err)
			}
			c.Timeout = d
		case "log_file":
			c.LogFile = value
		case "theme":
			c.Theme = value
		}
	}
	return nil
}

// ApplyEnv overlays ADVISOR_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v := strings.TrimSpace(getenv(EnvLogFile)); v != "" {
		c.LogFile = v
	}
	if v := strings.TrimSpace(getenv(EnvTheme)); v != "" {
		c.Theme = v
	}
	return nil
}

// Validate checks the resolved settings.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: base_url %q must be an absolute http(s) URL", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if c.Theme != ThemeDark && c.Theme != ThemeLight {
		return fmt.Errorf("config: theme must be %q or %q, got %q", ThemeDark, ThemeLight, c.Theme)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
