// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port        int `mapstructure:"port" validate:"required,min=1,max=65535"`
	GatewayPort int `mapstructure:"gateway_port" validate:"required,min=1,max=65535,nefield=Port"`
	Database    struct {
		Path string `mapstructure:"path" validate:"required"`
	} `mapstructure:"database"`
	Cache struct {
		Path       string `mapstructure:"path" validate:"required"`
		Version    string `mapstructure:"version" validate:"required,alphanum"`
		MemorySize int    `mapstructure:"memory_size" validate:"min=16"`
	} `mapstructure:"cache"`
	Content struct {
		Version string `mapstructure:"version" validate:"required"`
	} `mapstructure:"content"`
	Upstream struct {
		Quran struct {
			Provider    string `mapstructure:"provider" validate:"oneof=alquran qurancom mock"`
			BaseURL     string `mapstructure:"base_url" validate:"required,url"`
			Edition     string `mapstructure:"edition"`
			Translation string `mapstructure:"translation" validate:"required"`
		} `mapstructure:"quran"`
		Hadith struct {
			Provider           string   `mapstructure:"provider" validate:"oneof=hadithapi mock"`
			BaseURL            string   `mapstructure:"base_url" validate:"required,url"`
			Collections        []string `mapstructure:"collections" validate:"min=1,dive,required"`
			BooksPerCollection int      `mapstructure:"books_per_collection" validate:"min=0"`
		} `mapstructure:"hadith"`
	} `mapstructure:"upstream"`
	Connectivity struct {
		ProbeURL        string `mapstructure:"probe_url" validate:"required,url"`
		IntervalSeconds int    `mapstructure:"interval_seconds" validate:"min=1"`
	} `mapstructure:"connectivity"`
	Prefetch struct {
		OnStart              bool `mapstructure:"on_start"`
		RefreshIntervalHours int  `mapstructure:"refresh_interval_hours" validate:"min=0"`
	} `mapstructure:"prefetch"`
	Shell struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"shell"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")    // or "yaml"
	v.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// e.g., NOOR_DATABASE_PATH will override the `database.path` key.
	v.SetEnvPrefix("NOOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("gateway_port", 8081)
	v.SetDefault("database.path", "./noor.db")
	v.SetDefault("cache.path", "./noor-cache.db")
	v.SetDefault("cache.version", "v1")
	v.SetDefault("cache.memory_size", 4096)
	v.SetDefault("content.version", "1.0.0")
	v.SetDefault("upstream.quran.provider", "alquran")
	v.SetDefault("upstream.quran.base_url", "https://api.alquran.cloud")
	v.SetDefault("upstream.quran.edition", "quran-uthmani")
	v.SetDefault("upstream.quran.translation", "en.sahih")
	v.SetDefault("upstream.hadith.provider", "hadithapi")
	v.SetDefault("upstream.hadith.base_url", "https://cdn.jsdelivr.net/gh/fawazahmed0/hadith-api@1")
	v.SetDefault("upstream.hadith.collections", []string{"bukhari", "muslim", "abudawud", "tirmidhi", "nasai", "ibnmajah"})
	v.SetDefault("upstream.hadith.books_per_collection", 0)
	v.SetDefault("connectivity.probe_url", "https://api.alquran.cloud/v1/meta")
	v.SetDefault("connectivity.interval_seconds", 15)
	v.SetDefault("prefetch.on_start", false)
	v.SetDefault("prefetch.refresh_interval_hours", 0)
	v.SetDefault("shell.dir", "")
}

// Default returns a configuration populated only with default values.
// Tests use it to avoid depending on the working directory.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults always unmarshal cleanly.
	_ = v.Unmarshal(&config)
	return &config
}
