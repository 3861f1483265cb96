package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/MimeLyc/transcript-panel/internal/cuepoint"
)

// Config holds all application configuration.
//
// Values are resolved in order: defaults, the optional TOML file, then
// environment variables, then Options.
//
// Environment Variables:
// Server:
// - SERVER_ADDR: HTTP listen address (default: :8080)
// - CORS_ORIGINS: comma separated allowed origins (default: *)
// - STREAM_DEBOUNCE_MS: quiet period before a session pushes a highlight (default: 150)
// - UI_STATIC_DIR: serve the panel UI from this directory (optional)
//
// Library:
// - MEDIA_DIR: directory scanned for media and subtitle files (default: /media)
// - LIBRARY_CACHE_TTL: seconds loaded tracks stay cached (default: 300)
// - LIBRARY_RESCAN_CRON: cron expression that invalidates the cache (default: */30 * * * *)
// - LIBRARY_CONCURRENCY: parallel track loads per media item (default: 4)
//
// Engine:
// - SEEK_THRESHOLD: reasonable seek threshold (default: 2000)
// - DEFAULT_LANGUAGE: preferred track language for new sessions (optional)
//
// Misc:
// - HOTSPOTS_FILE: YAML hotspot overlay definitions (optional)
// - LOG_LEVEL: debug, info, warn, error (default: info)
// - LOG_FILE: also append logs to this file (optional)
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Library  LibraryConfig  `toml:"library"`
	Engine   EngineConfig   `toml:"engine"`
	Hotspots HotspotsConfig `toml:"hotspots"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Addr             string   `toml:"addr"`
	CORSOrigins      []string `toml:"cors_origins"`
	StreamDebounceMS int      `toml:"stream_debounce_ms"`
	UIStaticDir      string   `toml:"ui_static_dir"`
}

func (c ServerConfig) StreamDebounce() time.Duration {
	return time.Duration(c.StreamDebounceMS) * time.Millisecond
}

type LibraryConfig struct {
	MediaDir        string `toml:"media_dir"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
	RescanCron      string `toml:"rescan_cron"`
	Concurrency     int    `toml:"concurrency"`
}

func (c LibraryConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

type EngineConfig struct {
	ReasonableSeekThreshold float64 `toml:"reasonable_seek_threshold"`
	DefaultLanguage         string  `toml:"default_language"`
}

type HotspotsConfig struct {
	File string `toml:"file"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:             ":8080",
			CORSOrigins:      []string{"*"},
			StreamDebounceMS: 150,
		},
		Library: LibraryConfig{
			MediaDir:        "/media",
			CacheTTLSeconds: 300,
			RescanCron:      "*/30 * * * *",
			Concurrency:     4,
		},
		Engine: EngineConfig{
			ReasonableSeekThreshold: cuepoint.DefaultReasonableSeekThreshold,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. path may be empty; a missing file at an
// explicit path is an error.
func Load(path string, opts ...Option) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnvString("SERVER_ADDR", c.Server.Addr)
	c.Server.CORSOrigins = getEnvList("CORS_ORIGINS", c.Server.CORSOrigins)
	c.Server.StreamDebounceMS = getEnvInt("STREAM_DEBOUNCE_MS", c.Server.StreamDebounceMS)
	c.Server.UIStaticDir = getEnvString("UI_STATIC_DIR", c.Server.UIStaticDir)

	c.Library.MediaDir = getEnvString("MEDIA_DIR", c.Library.MediaDir)
	c.Library.CacheTTLSeconds = getEnvInt("LIBRARY_CACHE_TTL", c.Library.CacheTTLSeconds)
	c.Library.RescanCron = getEnvString("LIBRARY_RESCAN_CRON", c.Library.RescanCron)
	c.Library.Concurrency = getEnvInt("LIBRARY_CONCURRENCY", c.Library.Concurrency)

	c.Engine.ReasonableSeekThreshold = getEnvFloat("SEEK_THRESHOLD", c.Engine.ReasonableSeekThreshold)
	c.Engine.DefaultLanguage = getEnvString("DEFAULT_LANGUAGE", c.Engine.DefaultLanguage)

	c.Hotspots.File = getEnvString("HOTSPOTS_FILE", c.Hotspots.File)

	c.Log.Level = getEnvString("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnvString("LOG_FILE", c.Log.File)
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server addr is required")
	}
	if c.Server.StreamDebounceMS < 0 {
		return fmt.Errorf("stream_debounce_ms must not be negative")
	}
	if strings.TrimSpace(c.Library.MediaDir) == "" {
		return fmt.Errorf("media dir is required")
	}
	if c.Library.CacheTTLSeconds < 0 {
		return fmt.Errorf("cache_ttl_seconds must not be negative")
	}
	if c.Library.Concurrency <= 0 {
		return fmt.Errorf("library concurrency must be positive")
	}
	if c.Library.RescanCron != "" {
		if _, err := cron.ParseStandard(c.Library.RescanCron); err != nil {
			return fmt.Errorf("invalid rescan_cron: %w", err)
		}
	}
	if math.IsNaN(c.Engine.ReasonableSeekThreshold) || c.Engine.ReasonableSeekThreshold < 0 {
		return fmt.Errorf("reasonable_seek_threshold must be a non-negative number")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var ret []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ret = append(ret, part)
		}
	}
	if len(ret) == 0 {
		return defaultValue
	}
	return ret
}
