package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the runtime settings for trailhead.
type Config struct {
	BaseURL        string
	DataDir        string
	CommentDelay   time.Duration
	RequestTimeout time.Duration
	// Secret seeds the credential vault key. Empty means use the key file
	// kept in the vault directory.
	Secret string
}

const (
	defaultConfigPath     = "~/.config/trailhead/config.toml"
	defaultDataDir        = "~/.local/share/trailhead"
	defaultBaseURL        = "http://localhost:3001/"
	// Stands in for the network round trip of posting a comment.
	defaultCommentDelay   = 2 * time.Second
	defaultRequestTimeout = 10 * time.Second
)

// overrides mirrors Config for environment parsing. Nil means unset.
type overrides struct {
	BaseURL        *string        `env:"TRAILHEAD_BASE_URL"`
	DataDir        *string        `env:"TRAILHEAD_DATA_DIR"`
	CommentDelay   *time.Duration `env:"TRAILHEAD_COMMENT_DELAY"`
	RequestTimeout *time.Duration `env:"TRAILHEAD_REQUEST_TIMEOUT"`
	Secret         *string        `env:"TRAILHEAD_SECRET"`
}

// Default returns the built-in configuration with paths expanded.
func Default() Config {
	return Config{
		BaseURL:        defaultBaseURL,
		DataDir:        mustExpand(defaultDataDir),
		CommentDelay:   defaultCommentDelay,
		RequestTimeout: defaultRequestTimeout,
	}
}

// Load reads the config file at path (or the default location), then applies
// TRAILHEAD_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg, err := loadFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL        string `toml:"base_url"`
		DataDir        string `toml:"data_dir"`
		CommentDelay   string `toml:"comment_delay"`
		RequestTimeout string `toml:"request_timeout"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = mustExpand(v)
	}
	if cfg.CommentDelay, err = parseDuration("comment_delay", raw.CommentDelay, cfg.CommentDelay); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, cfg.RequestTimeout); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var o overrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.BaseURL != nil && strings.TrimSpace(*o.BaseURL) != "" {
		cfg.BaseURL = strings.TrimSpace(*o.BaseURL)
	}
	if o.DataDir != nil && strings.TrimSpace(*o.DataDir) != "" {
		cfg.DataDir = mustExpand(*o.DataDir)
	}
	if o.CommentDelay != nil {
		if *o.CommentDelay < 0 {
			return fmt.Errorf("TRAILHEAD_COMMENT_DELAY must not be negative")
		}
		cfg.CommentDelay = *o.CommentDelay
	}
	if o.RequestTimeout != nil {
		if *o.RequestTimeout <= 0 {
			return fmt.Errorf("TRAILHEAD_REQUEST_TIMEOUT must be positive")
		}
		cfg.RequestTimeout = *o.RequestTimeout
	}
	if o.Secret != nil {
		cfg.Secret = *o.Secret
	}
	return nil
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parse config: %s must not be negative", field)
	}
	return d, nil
}

// CachePath is the SQLite file holding the persisted collections and favorites.
func (c Config) CachePath() string {
	return filepath.Join(c.dataDir(), "cache.db")
}

// VaultDir holds the sealed credential files.
func (c Config) VaultDir() string {
	return filepath.Join(c.dataDir(), "vault")
}

// LogDir is where glog writes trailhead.INFO and friends.
func (c Config) LogDir() string {
	return filepath.Join(c.dataDir(), "logs")
}

// InfoLogPath is the symlink glog keeps pointing at the current INFO log.
func (c Config) InfoLogPath() string {
	return filepath.Join(c.LogDir(), "trailhead.INFO")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
