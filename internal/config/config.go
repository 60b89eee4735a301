package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

const (
	// DefaultAPIBaseURL matches the backend's development listener.
	DefaultAPIBaseURL = "http://localhost:8000"
	// DefaultTimeout covers slow AI and inspection calls.
	DefaultTimeout  = 120 * time.Second
	DefaultLogLevel = "info"

	// EnvAPIBaseURL overrides the configured backend address.
	EnvAPIBaseURL = "NETINSPECTOR_API_BASE_URL"
)

// Config captures persisted console preferences and the backend address.
type Config struct {
	APIBaseURL string        `yaml:"api_base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	Theme      string        `yaml:"theme"`
	LogFile    string        `yaml:"log_file"`
	LogLevel   string        `yaml:"log_level"`
	Screening  Screening     `yaml:"screening"`
}

// Screening configures the optional YARA check run before uploads.
type Screening struct {
	Enabled bool   `yaml:"enabled"`
	RuleDir string `yaml:"rule_dir"`
}

// Load reads configuration data from the provided path. If the file does not exist,
// a default configuration is returned without an error. The environment base URL
// override is applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	resolved, err := ResolvePath(path)
	if err != nil {
		return cfg, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config: %w", err)
		}
	}

	applyEnv(&cfg)
	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(path string, cfg Config) error {
	resolved, err := ResolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Default returns a usable configuration when no file exists yet.
func Default() Config {
	return Config{
		APIBaseURL: DefaultAPIBaseURL,
		Timeout:    DefaultTimeout,
		Theme:      ThemeAuto,
		LogLevel:   DefaultLogLevel,
	}
}

// Validate reports configuration values the console cannot work with.
func Validate(cfg Config) error {
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return fmt.Errorf("api_base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_base_url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api_base_url: missing host")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if cfg.Screening.Enabled && cfg.Screening.RuleDir == "" {
		return fmt.Errorf("screening enabled without rule_dir")
	}
	return nil
}

// NormalizeTheme maps user input onto a known theme name.
func NormalizeTheme(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case ThemeDark:
		return ThemeDark
	case ThemeLight:
		return ThemeLight
	default:
		return ThemeAuto
	}
}

// DefaultPath returns the standard configuration path within the user's
// XDG config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "netinspector-tui", "config.yaml"), nil
}

// ResolvePath returns path, or the default location when path is empty.
func ResolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return DefaultPath()
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); v != "" {
		cfg.APIBaseURL = v
	}
}

func (c *Config) normalize() {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.Theme = NormalizeTheme(c.Theme)
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}
