package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.ServiceName != "svc" || cfg.Logging.Level != "info" {
			t.Errorf("logging defaults not applied: %+v", cfg.Logging)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "staging"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "qa"}, "config.environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

type appConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	API           struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"api"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
name: sessionctl
environment: staging
api:
  base_url: https://api.example.com
  timeout: 5s
`)

	var cfg appConfig
	if err := LoadConfig("sessionctl", &cfg, WithConfigFile(path), WithEnvPrefix("RKTEST")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "sessionctl" || cfg.Environment != "staging" {
		t.Errorf("service config = %+v", cfg.ServiceConfig)
	}
	if cfg.API.BaseURL != "https://api.example.com" || cfg.API.Timeout != 5*time.Second {
		t.Errorf("api = %+v", cfg.API)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "name: sessionctl\napi:\n  base_url: https://file.example.com\n")
	envPath := writeFile(t, dir, ".env", "RKTEST_API_TIMEOUT=2s\n")

	t.Setenv("RKTEST_API_BASE_URL", "https://env.example.com")
	t.Setenv("API_BASE_URL", "https://unprefixed.example.com")
	t.Cleanup(func() { os.Unsetenv("RKTEST_API_TIMEOUT") })

	var cfg appConfig
	err := LoadConfig("sessionctl", &cfg,
		WithConfigFile(path), WithEnvFile(envPath), WithEnvPrefix("rktest_"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("base_url = %q, want env override", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 2*time.Second {
		t.Errorf("timeout = %v, want value from .env", cfg.API.Timeout)
	}
	if cfg.Name != "sessionctl" {
		t.Errorf("name = %q", cfg.Name)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg appConfig
	err := LoadConfig("nonexistent", &cfg, WithConfigFile("/nonexistent/path.yml"), WithEnvPrefix("RKTEST"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func (c *appConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "name: sessionctl\n")

	cfg, err := Load[appConfig]("sessionctl", WithConfigFile(path), WithEnvPrefix("RKTEST"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Environment != "development" || cfg.API.Timeout != 30*time.Second {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	bad := writeFile(t, t.TempDir(), "config.yml", "environment: qa\n")
	if _, err := Load[appConfig]("sessionctl", WithConfigFile(bad), WithEnvPrefix("RKTEST")); err == nil {
		t.Error("expected validation error")
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(string) error    { return nil }

func TestResolve(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/my-svc/config.yml": true,
		"./config/.env":           true,
	}}
	files := Resolve("my-svc", LoaderConfig{FileSystem: fs})
	if files.ConfigFile != "./cmd/my-svc/config.yml" {
		t.Errorf("config file = %q", files.ConfigFile)
	}
	if files.EnvFile != "./config/.env" {
		t.Errorf("env file = %q", files.EnvFile)
	}

	explicit := Resolve("my-svc", LoaderConfig{FileSystem: fs, ConfigFile: "/etc/x.yml"})
	if explicit.ConfigFile != "/etc/x.yml" {
		t.Errorf("explicit config file ignored: %q", explicit.ConfigFile)
	}
}

func TestKeyVariants(t *testing.T) {
	got := keyVariants("STORAGE_REDIS_OP_TIMEOUT")
	for _, want := range []string{
		"storage_redis_op_timeout",
		"storage.redis.op.timeout",
		"storage.redis_op_timeout",
		"storage.redis.op_timeout",
	} {
		if !slices.Contains(got, want) {
			t.Errorf("variants %v missing %q", got, want)
		}
	}
	if v := keyVariants("NAME"); len(v) != 1 || v[0] != "name" {
		t.Errorf("single part = %v", v)
	}
}

func TestBindEnvPrefix(t *testing.T) {
	var lc LoaderConfig
	WithEnvPrefix("restkit_")(&lc)
	if lc.EnvPrefix != "RESTKIT" {
		t.Errorf("prefix = %q", lc.EnvPrefix)
	}
}
