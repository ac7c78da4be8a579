package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	kerrors "github.com/kudosx/kudosx/internal/errors"
)

// LogLevel specifies the logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat specifies the log output format.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// VerifyPolicy controls how TLS certificate failures are handled.
type VerifyPolicy string

const (
	// VerifyStrict never retries after a certificate failure.
	VerifyStrict VerifyPolicy = "strict"
	// VerifyFallback retries once without verification, only after a
	// certificate-specific failure.
	VerifyFallback VerifyPolicy = "fallback"
)

// MaxRegistryTimeout caps registry.timeout. The remote registry is an
// optional overlay and must never hold up a command for long.
const MaxRegistryTimeout = 9 * time.Second

// DefaultRemoteRegistryURL is the versioned location of the published registry.
const DefaultRemoteRegistryURL = "https://raw.githubusercontent.com/kudosx/kudosx/main/internal/registry/bundled/skills.yaml"

// RegistryConfig holds registry source settings.
type RegistryConfig struct {
	// RemoteURL is fetched over HTTPS and overlaid on the bundled registry.
	RemoteURL string `toml:"remote_url"`

	// LocalFile replaces the bundled registry when set.
	LocalFile string `toml:"local_file"`

	// Timeout bounds the remote registry fetch.
	Timeout time.Duration `toml:"timeout"`
}

// HostingConfig holds settings for the source hosting service.
type HostingConfig struct {
	BaseURL         string        `toml:"base_url"`
	Branch          string        `toml:"branch"`
	TagTimeout      time.Duration `toml:"tag_timeout"`
	DownloadTimeout time.Duration `toml:"download_timeout"`
	Verify          VerifyPolicy  `toml:"verify"`
}

// PathsConfig holds installation root locations.
type PathsConfig struct {
	GlobalRoot  string `toml:"global_root"`
	ProjectRoot string `toml:"project_root"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  LogLevel  `toml:"level"`
	Format LogFormat `toml:"format"`
	File   string    `toml:"file"`
}

// Config is the main configuration struct for kudosx.
type Config struct {
	Registry RegistryConfig `toml:"registry"`
	Hosting  HostingConfig  `toml:"hosting"`
	Paths    PathsConfig    `toml:"paths"`
	Logging  LoggingConfig  `toml:"logging"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			RemoteURL: DefaultRemoteRegistryURL,
			Timeout:   5 * time.Second,
		},
		Hosting: HostingConfig{
			BaseURL:         "https://github.com",
			Branch:          "main",
			TagTimeout:      10 * time.Second,
			DownloadTimeout: 60 * time.Second,
			Verify:          VerifyFallback,
		},
		Paths: PathsConfig{
			GlobalRoot:  "~/.claude",
			ProjectRoot: ".claude",
		},
		Logging: LoggingConfig{
			Level:  LogLevelWarn,
			Format: LogFormatText,
			File:   "",
		},
	}
}

// Load loads configuration from file, merging with defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if no config file
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from the standard locations in a directory.
// Applies in order: defaults -> ~/.kudosx/config.toml -> .kudosx/config.toml
// Later configs override earlier ones (project-level takes precedence).
func LoadFromDir(dir string) (*Config, error) {
	cfg := Default()

	home, err := os.UserHomeDir()
	if err == nil {
		globalConfig := filepath.Join(home, ".kudosx", "config.toml")
		if data, err := os.ReadFile(globalConfig); err == nil {
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		}
	}

	projectConfig := filepath.Join(dir, ".kudosx", "config.toml")
	if data, err := os.ReadFile(projectConfig); err == nil {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing project config: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Registry.RemoteURL == "" {
		return kerrors.ConfigMissingField("registry.remote_url")
	}
	if err := checkSecureURL(c.Registry.RemoteURL); err != "" {
		return kerrors.ConfigInvalidValue("registry.remote_url", c.Registry.RemoteURL, err)
	}
	if c.Registry.Timeout <= 0 {
		return kerrors.ConfigInvalidValue("registry.timeout", c.Registry.Timeout.String(), "must be positive")
	}
	if c.Registry.Timeout > MaxRegistryTimeout {
		return kerrors.ConfigInvalidValue("registry.timeout", c.Registry.Timeout.String(),
			"must be at most "+MaxRegistryTimeout.String())
	}
	if c.Hosting.BaseURL == "" {
		return kerrors.ConfigMissingField("hosting.base_url")
	}
	if err := checkSecureURL(c.Hosting.BaseURL); err != "" {
		return kerrors.ConfigInvalidValue("hosting.base_url", c.Hosting.BaseURL, err)
	}
	if c.Hosting.Branch == "" {
		return kerrors.ConfigMissingField("hosting.branch")
	}
	if c.Hosting.TagTimeout <= 0 {
		return kerrors.ConfigInvalidValue("hosting.tag_timeout", c.Hosting.TagTimeout.String(), "must be positive")
	}
	if c.Hosting.DownloadTimeout <= 0 {
		return kerrors.ConfigInvalidValue("hosting.download_timeout", c.Hosting.DownloadTimeout.String(), "must be positive")
	}
	switch c.Hosting.Verify {
	case VerifyStrict, VerifyFallback:
	default:
		return kerrors.ConfigInvalidValue("hosting.verify", c.Hosting.Verify, "must be strict or fallback")
	}
	if c.Paths.GlobalRoot == "" {
		return kerrors.ConfigMissingField("paths.global_root")
	}
	if c.Paths.ProjectRoot == "" {
		return kerrors.ConfigMissingField("paths.project_root")
	}
	return nil
}

// checkSecureURL returns why raw is not an acceptable remote URL, or "".
// Plain http is allowed for loopback hosts only, which local mirrors and
// test servers use.
func checkSecureURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "must be an absolute https URL"
	}
	switch u.Scheme {
	case "https":
		return ""
	case "http":
		if isLoopback(u.Hostname()) {
			return ""
		}
		return "must use https (plain http is allowed for loopback hosts only)"
	default:
		return "must be an absolute https URL"
	}
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// LogFile returns the absolute log file path, or empty if file logging is off.
func (c *Config) LogFile(baseDir string) string {
	if c.Logging.File == "" {
		return ""
	}
	if filepath.IsAbs(c.Logging.File) {
		return c.Logging.File
	}
	return filepath.Join(baseDir, c.Logging.File)
}

// ProjectRoot returns the absolute project installation root.
func (c *Config) ProjectRoot(baseDir string) string {
	if filepath.IsAbs(c.Paths.ProjectRoot) {
		return c.Paths.ProjectRoot
	}
	return filepath.Join(baseDir, c.Paths.ProjectRoot)
}
