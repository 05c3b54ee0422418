// This test file verifies the configuration loading logic using Viper.

package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults when no config file", func(t *testing.T) {
		// Ensure no config file exists for this test
		os.Remove("config.yml")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		// Check if default values are set
		if cfg.Port != 8080 {
			t.Errorf("Expected default port 8080, got %d", cfg.Port)
		}
		if cfg.GatewayPort != 8081 {
			t.Errorf("Expected default gateway port 8081, got %d", cfg.GatewayPort)
		}
		if cfg.Database.Path != "./noor.db" {
			t.Errorf("Expected default db path './noor.db', got '%s'", cfg.Database.Path)
		}
		if cfg.Cache.Version != "v1" {
			t.Errorf("Expected default cache version 'v1', got '%s'", cfg.Cache.Version)
		}
		if cfg.Upstream.Quran.Provider != "alquran" {
			t.Errorf("Expected default quran provider 'alquran', got '%s'", cfg.Upstream.Quran.Provider)
		}
		if len(cfg.Upstream.Hadith.Collections) != 6 {
			t.Errorf("Expected 6 default hadith collections, got %d", len(cfg.Upstream.Hadith.Collections))
		}
	})

	t.Run("Loads from config file", func(t *testing.T) {
		// Create a temporary config file for this test
		configContent := `
port: 9999
gateway_port: 9998
database:
  path: "/tmp/test.db"
cache:
  version: "v7"
upstream:
  quran:
    provider: "qurancom"
    base_url: "https://api.quran.com"
unknown_setting: "should be ignored"
`
		// Create the config file in the current directory so Viper can find it.
		// Note: `t.TempDir()` is not used here because Viper looks in the CWD.
		configPath := "config.yml"
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write test config file: %v", err)
		}
		// Clean up the file after the test
		defer os.Remove(configPath)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		// Check if values from the file were loaded
		if cfg.Port != 9999 {
			t.Errorf("Expected port 9999, got %d", cfg.Port)
		}
		if cfg.Database.Path != "/tmp/test.db" {
			t.Errorf("Expected db path '/tmp/test.db', got '%s'", cfg.Database.Path)
		}
		if cfg.Cache.Version != "v7" {
			t.Errorf("Expected cache version 'v7', got '%s'", cfg.Cache.Version)
		}
		if cfg.Upstream.Quran.Provider != "qurancom" {
			t.Errorf("Expected quran provider 'qurancom', got '%s'", cfg.Upstream.Quran.Provider)
		}
		if cfg.Connectivity.IntervalSeconds != 15 {
			t.Errorf("Expected default probe interval of 15, got %d", cfg.Connectivity.IntervalSeconds)
		}
	})

	t.Run("Rejects invalid values", func(t *testing.T) {
		configContent := `
port: 8080
gateway_port: 8080
upstream:
  quran:
    provider: "unknown"
`
		configPath := "config.yml"
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write test config file: %v", err)
		}
		defer os.Remove(configPath)

		_, err := Load()
		if err == nil {
			t.Fatal("Expected Load() to reject an invalid configuration")
		}
	})
}

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("Default configuration should be valid, got: %v", err)
	}
}
