package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pricing-detective/internal/errors"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.BaseURL != Default().Backend.BaseURL || cfg.Session.Language != "en" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{"config.json", `{"backend": {"base_url": "https://api.example.com", "timeout_seconds": 30}, "session": {"language": "de"}}`},
		{"config.yaml", "backend:\n  base_url: https://api.example.com\n  timeout_seconds: 30\nsession:\n  language: de\n"},
		{"config.hcl", "backend {\n  base_url = \"https://api.example.com\"\n  timeout_seconds = 30\n}\n\nsession {\n  language = \"de\"\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Backend.BaseURL != "https://api.example.com" {
				t.Errorf("base_url = %q", cfg.Backend.BaseURL)
			}
			if cfg.Backend.Timeout().Seconds() != 30 {
				t.Errorf("timeout = %s", cfg.Backend.Timeout())
			}
			if cfg.Session.Language != "de" {
				t.Errorf("language = %q", cfg.Session.Language)
			}
			// untouched sections keep their defaults
			if cfg.Server.Address != ":8080" || cfg.Output.DefaultFormat != "cli" {
				t.Errorf("defaults lost: %+v", cfg)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"config.json", "config.yml", "config.hcl"} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Backend.BaseURL = "https://pricing.example.com"
			cfg.Identity.DeviceID = "pinned-device"
			cfg.Server.AllowedOrigins = []string{"https://app.example.com"}
			cfg.Output.NoColor = true
			cfg.Logging.Level = "debug"

			path := filepath.Join(t.TempDir(), "nested", name)
			if err := cfg.Save(path); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if loaded.Backend.BaseURL != cfg.Backend.BaseURL ||
				loaded.Identity.DeviceID != "pinned-device" ||
				!loaded.Output.NoColor ||
				loaded.Logging.Level != "debug" {
				t.Errorf("round trip lost values: %+v", loaded)
			}
			if len(loaded.Server.AllowedOrigins) != 1 || loaded.Server.AllowedOrigins[0] != "https://app.example.com" {
				t.Errorf("allowed_origins = %v", loaded.Server.AllowedOrigins)
			}
		})
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"bad url":     `{"backend": {"base_url": "ftp://example.com"}}`,
		"bad timeout": `{"backend": {"timeout_seconds": 0}}`,
		"bad format":  `{"output": {"default_format": "html"}}`,
		"bad json":    `{"backend": `,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.IsType(err, errors.TypeConfig) {
				t.Errorf("expected CONFIG_ERROR, got %v", err)
			}
		})
	}
}

func TestLoadErrorNamesTheFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("backend: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parse "+path) {
		t.Errorf("error should name the file, got %v", err)
	}
}

func TestLoadRejectsUnknownHCLBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.hcl")
	if err := os.WriteFile(path, []byte("database {\n  dsn = \"x\"\n}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("expected CONFIG_ERROR, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIURL:   "https://env.example.com",
		EnvDeviceID: "env-device",
		EnvLanguage: "ja-JP",
		EnvLogLevel: "DEBUG",
	}
	cfg := Default()
	cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if cfg.Backend.BaseURL != "https://env.example.com" ||
		cfg.Identity.DeviceID != "env-device" ||
		cfg.Session.Language != "ja" ||
		cfg.Logging.Level != "debug" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestApplyEnvIgnoresEmpty(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Backend.BaseURL != Default().Backend.BaseURL {
		t.Errorf("empty override replaced base_url with %q", cfg.Backend.BaseURL)
	}
}

func TestGetSet(t *testing.T) {
	original := Get()
	defer Set(original)

	cfg := Default()
	cfg.Session.Language = "fr"
	Set(cfg)
	if Get().Session.Language != "fr" {
		t.Error("Set did not replace the global config")
	}
}
