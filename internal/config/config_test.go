package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Registry.RemoteURL != DefaultRemoteRegistryURL {
		t.Errorf("Registry.RemoteURL = %s, want %s", cfg.Registry.RemoteURL, DefaultRemoteRegistryURL)
	}
	if cfg.Registry.Timeout != 5*time.Second {
		t.Errorf("Registry.Timeout = %v, want 5s", cfg.Registry.Timeout)
	}
	if cfg.Hosting.BaseURL != "https://github.com" {
		t.Errorf("Hosting.BaseURL = %s, want https://github.com", cfg.Hosting.BaseURL)
	}
	if cfg.Hosting.Branch != "main" {
		t.Errorf("Hosting.Branch = %s, want main", cfg.Hosting.Branch)
	}
	if cfg.Hosting.TagTimeout != 10*time.Second {
		t.Errorf("Hosting.TagTimeout = %v, want 10s", cfg.Hosting.TagTimeout)
	}
	if cfg.Hosting.Verify != VerifyFallback {
		t.Errorf("Hosting.Verify = %s, want fallback", cfg.Hosting.Verify)
	}
	if cfg.Paths.GlobalRoot != "~/.claude" {
		t.Errorf("Paths.GlobalRoot = %s, want ~/.claude", cfg.Paths.GlobalRoot)
	}
	if cfg.Paths.ProjectRoot != ".claude" {
		t.Errorf("Paths.ProjectRoot = %s, want .claude", cfg.Paths.ProjectRoot)
	}
	if cfg.Logging.Level != LogLevelWarn {
		t.Errorf("Logging.Level = %s, want warn", cfg.Logging.Level)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	content := `
[registry]
remote_url = "https://example.com/skills.yaml"
local_file = "my-skills.yaml"
timeout = "2s"

[hosting]
branch = "trunk"
verify = "strict"

[paths]
global_root = "/opt/claude"

[logging]
level = "debug"
format = "json"
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Registry.RemoteURL != "https://example.com/skills.yaml" {
		t.Errorf("Registry.RemoteURL = %s", cfg.Registry.RemoteURL)
	}
	if cfg.Registry.LocalFile != "my-skills.yaml" {
		t.Errorf("Registry.LocalFile = %s", cfg.Registry.LocalFile)
	}
	if cfg.Registry.Timeout != 2*time.Second {
		t.Errorf("Registry.Timeout = %v, want 2s", cfg.Registry.Timeout)
	}
	if cfg.Hosting.Branch != "trunk" {
		t.Errorf("Hosting.Branch = %s, want trunk", cfg.Hosting.Branch)
	}
	if cfg.Hosting.Verify != VerifyStrict {
		t.Errorf("Hosting.Verify = %s, want strict", cfg.Hosting.Verify)
	}
	// Unset keys keep their defaults.
	if cfg.Hosting.BaseURL != "https://github.com" {
		t.Errorf("Hosting.BaseURL = %s, want default", cfg.Hosting.BaseURL)
	}
	if cfg.Paths.GlobalRoot != "/opt/claude" {
		t.Errorf("Paths.GlobalRoot = %s, want /opt/claude", cfg.Paths.GlobalRoot)
	}
	if cfg.Paths.ProjectRoot != ".claude" {
		t.Errorf("Paths.ProjectRoot = %s, want default", cfg.Paths.ProjectRoot)
	}
	if cfg.Logging.Level != LogLevelDebug {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
	if cfg.Logging.Format != LogFormatJSON {
		t.Errorf("Logging.Format = %s, want json", cfg.Logging.Format)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/config.toml")
	if err != nil {
		t.Fatalf("Load should not fail for non-existent file: %v", err)
	}

	if cfg.Hosting.Branch != "main" {
		t.Errorf("Should return defaults, got branch = %s", cfg.Hosting.Branch)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	content := `invalid = [toml content`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load should fail for invalid TOML")
	}
}

func TestLoad_ReadError(t *testing.T) {
	// Reading a directory fails with a read error, not "not found"
	dir := t.TempDir()
	_, err := Load(dir)
	if err == nil {
		t.Error("Load should fail when trying to read a directory")
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	cfgDir := filepath.Join(dir, ".kudosx")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatalf("Failed to create .kudosx dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestLoadFromDir(t *testing.T) {
	t.Run("project-local config", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		dir := t.TempDir()
		writeConfig(t, dir, "[hosting]\nbranch = \"develop\"\n")

		cfg, err := LoadFromDir(dir)
		if err != nil {
			t.Fatalf("LoadFromDir failed: %v", err)
		}
		if cfg.Hosting.Branch != "develop" {
			t.Errorf("Hosting.Branch = %s, want develop", cfg.Hosting.Branch)
		}
	})

	t.Run("no config file - uses defaults", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		cfg, err := LoadFromDir(t.TempDir())
		if err != nil {
			t.Fatalf("LoadFromDir failed: %v", err)
		}
		if cfg.Hosting.Branch != "main" {
			t.Errorf("Hosting.Branch = %s, want main (default)", cfg.Hosting.Branch)
		}
	})

	t.Run("invalid project config", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		dir := t.TempDir()
		writeConfig(t, dir, `invalid = [toml`)

		if _, err := LoadFromDir(dir); err == nil {
			t.Error("LoadFromDir should fail with invalid TOML")
		}
	})

	t.Run("project overrides user global", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		writeConfig(t, home, "[hosting]\nbranch = \"global\"\nverify = \"strict\"\n")

		dir := t.TempDir()
		writeConfig(t, dir, "[hosting]\nbranch = \"project\"\n")

		cfg, err := LoadFromDir(dir)
		if err != nil {
			t.Fatalf("LoadFromDir failed: %v", err)
		}
		if cfg.Hosting.Branch != "project" {
			t.Errorf("Hosting.Branch = %s, want project", cfg.Hosting.Branch)
		}
		if cfg.Hosting.Verify != VerifyStrict {
			t.Errorf("Hosting.Verify = %s, want strict from global config", cfg.Hosting.Verify)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(*Config) {}, false},
		{"missing remote_url", func(c *Config) { c.Registry.RemoteURL = "" }, true},
		{"non-http remote_url", func(c *Config) { c.Registry.RemoteURL = "ftp://x" }, true},
		{"plain http remote_url", func(c *Config) { c.Registry.RemoteURL = "http://example.com/skills.yaml" }, true},
		{"relative remote_url", func(c *Config) { c.Registry.RemoteURL = "https:skills.yaml" }, true},
		{"loopback http remote_url", func(c *Config) { c.Registry.RemoteURL = "http://127.0.0.1:8080/skills.yaml" }, false},
		{"localhost http remote_url", func(c *Config) { c.Registry.RemoteURL = "http://localhost/skills.yaml" }, false},
		{"ipv6 loopback http remote_url", func(c *Config) { c.Registry.RemoteURL = "http://[::1]:9000/skills.yaml" }, false},
		{"zero registry timeout", func(c *Config) { c.Registry.Timeout = 0 }, true},
		{"registry timeout at cap", func(c *Config) { c.Registry.Timeout = MaxRegistryTimeout }, false},
		{"registry timeout over cap", func(c *Config) { c.Registry.Timeout = 30 * time.Second }, true},
		{"missing base_url", func(c *Config) { c.Hosting.BaseURL = "" }, true},
		{"plain http base_url", func(c *Config) { c.Hosting.BaseURL = "http://github.example" }, true},
		{"loopback http base_url", func(c *Config) { c.Hosting.BaseURL = "http://127.0.0.1:3000" }, false},
		{"missing branch", func(c *Config) { c.Hosting.Branch = "" }, true},
		{"zero tag_timeout", func(c *Config) { c.Hosting.TagTimeout = 0 }, true},
		{"negative download_timeout", func(c *Config) { c.Hosting.DownloadTimeout = -time.Second }, true},
		{"unknown verify policy", func(c *Config) { c.Hosting.Verify = "never" }, true},
		{"missing global_root", func(c *Config) { c.Paths.GlobalRoot = "" }, true},
		{"missing project_root", func(c *Config) { c.Paths.ProjectRoot = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_PathHelpers(t *testing.T) {
	cfg := Default()
	baseDir := "/project"

	if got := cfg.ProjectRoot(baseDir); got != "/project/.claude" {
		t.Errorf("ProjectRoot = %s, want /project/.claude", got)
	}
	if got := cfg.LogFile(baseDir); got != "" {
		t.Errorf("LogFile = %s, want empty when unset", got)
	}

	cfg.Logging.File = ".kudosx/kudosx.log"
	if got := cfg.LogFile(baseDir); got != "/project/.kudosx/kudosx.log" {
		t.Errorf("LogFile = %s, want /project/.kudosx/kudosx.log", got)
	}

	cfg.Paths.ProjectRoot = "/absolute/claude"
	if got := cfg.ProjectRoot(baseDir); got != "/absolute/claude" {
		t.Errorf("ProjectRoot (abs) = %s, want /absolute/claude", got)
	}
	cfg.Logging.File = "/var/log/kudosx.log"
	if got := cfg.LogFile(baseDir); got != "/var/log/kudosx.log" {
		t.Errorf("LogFile (abs) = %s, want /var/log/kudosx.log", got)
	}
}
