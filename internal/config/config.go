// Package config handles the ~/.reviewdesk directory: a YAML config file for
// the review service origin and reviewer identity, plus the logs directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ReviewdeskDir is the per-user directory created on first run.
	ReviewdeskDir = ".reviewdesk"

	// DefaultServerURL matches the review service's local address.
	DefaultServerURL = "http://localhost:8000"

	// DefaultReviewerID is the identity stamped on submitted decisions.
	DefaultReviewerID = "user_ui"
)

const defaultConfigYAML = `# reviewdesk configuration
version: 1

# Origin of the review service. Override per run with REVIEWDESK_SERVER.
server_url: http://localhost:8000

# Identity stamped on every submitted decision. Override with REVIEWDESK_REVIEWER.
reviewer_id: user_ui

# Optional: path of the diagnostic log file. Defaults to logs/reviewdesk.log
# inside this directory.
# log_path: /tmp/reviewdesk.log
`

// FileConfig models the on-disk config.yaml.
type FileConfig struct {
	Version    int    `yaml:"version"`
	ServerURL  string `yaml:"server_url"`
	ReviewerID string `yaml:"reviewer_id"`
	LogPath    string `yaml:"log_path,omitempty"`
}

// Config holds the resolved runtime configuration.
type Config struct {
	// Dir is the ~/.reviewdesk directory backing this config.
	Dir string

	ServerURL  string
	ReviewerID string
	LogPath    string
}

// Load resolves configuration for the current user: defaults, then
// config.yaml, then environment overrides.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("config: resolve home directory: %w", err)
	}
	return LoadFrom(filepath.Join(home, ReviewdeskDir))
}

// LoadFrom resolves configuration rooted at an explicit directory. The
// directory and a commented default config.yaml are created when missing.
func LoadFrom(dir string) (*Config, error) {
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return nil, fmt.Errorf("config: ensure %s: %w", dir, err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := ensureConfigFile(path); err != nil {
		return nil, err
	}

	cfg := &Config{
		Dir:        dir,
		ServerURL:  DefaultServerURL,
		ReviewerID: DefaultReviewerID,
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if len(data) > 0 {
		var parsed FileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.apply(parsed)
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) apply(parsed FileConfig) {
	if v := strings.TrimSpace(parsed.ServerURL); v != "" {
		c.ServerURL = v
	}
	if v := strings.TrimSpace(parsed.ReviewerID); v != "" {
		c.ReviewerID = v
	}
	if v := strings.TrimSpace(parsed.LogPath); v != "" {
		c.LogPath = v
	}
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("REVIEWDESK_SERVER")); v != "" {
		c.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv("REVIEWDESK_REVIEWER")); v != "" {
		c.ReviewerID = v
	}
}

func (c *Config) normalize() {
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
	c.ReviewerID = strings.TrimSpace(c.ReviewerID)
	if c.LogPath == "" {
		c.LogPath = filepath.Join(c.Dir, "logs", "reviewdesk.log")
	} else if !filepath.IsAbs(c.LogPath) {
		c.LogPath = filepath.Clean(filepath.Join(c.Dir, c.LogPath))
	}
}

func (c *Config) validate() error {
	parsed, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server_url %q: %w", c.ServerURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("server_url must be http or https, got %q", c.ServerURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("server_url %q has no host", c.ServerURL)
	}
	if c.ReviewerID == "" {
		return fmt.Errorf("reviewer_id is required")
	}
	return nil
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("config: write default %s: %w", path, err)
	}
	return nil
}
