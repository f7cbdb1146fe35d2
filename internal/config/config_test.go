package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvURL, EnvAddr, EnvTimeout, EnvLogLevel} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.URL != DefaultURL {
		t.Errorf("URL = %q, want %q", cfg.URL, DefaultURL)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvURL, "http://localhost:9000/")
	t.Setenv(EnvAddr, "127.0.0.1:3000")
	t.Setenv(EnvTimeout, "5s")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.URL != "http://localhost:9000/" || cfg.Addr != "127.0.0.1:3000" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAddr, ":7000")

	path := filepath.Join(t.TempDir(), ".env")
	content := "SUGARFIT_URL=http://studio.test/\nSUGARFIT_ADDR=:9999\nSUGARFIT_TIMEOUT=2m\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv(EnvURL)
		os.Unsetenv(EnvTimeout)
	})

	if cfg.URL != "http://studio.test/" {
		t.Errorf("URL = %q, want value from file", cfg.URL)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("Addr = %q, environment should win over file", cfg.Addr)
	}
	if cfg.Timeout != 2*time.Minute {
		t.Errorf("Timeout = %v, want 2m", cfg.Timeout)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Load() with missing file error = %v, want nil", err)
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	tests := []string{"soon", "-5s", "0s"}

	for _, value := range tests {
		t.Run(value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(EnvTimeout, value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q expected error", EnvTimeout, value)
			}
		})
	}
}
