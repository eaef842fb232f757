package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".config.yaml"

// Loader resolves configuration from defaults, an optional yaml file, and
// environment variables, in that order of precedence.
type Loader struct {
	useDotEnv bool
	path      string
}

func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		path:      defaultConfigFile,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the yaml file location (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// Result captures the loaded configuration and its origin.
type Result struct {
	Config *Config
	Path   string
}

func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()
	origin := "defaults"

	if data, err := os.ReadFile(l.path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", l.path, err)
		}
		origin = l.path
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file %s: %w", l.path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: origin}, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("API_TITLE"); v != "" {
		cfg.API.Title = v
	}
	if v := os.Getenv("API_VERSION"); v != "" {
		cfg.API.Version = v
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORS.Origins = splitAndTrim(v)
	}
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Upload.MaxFileSize = size
		}
	}
	if v := os.Getenv("ALLOWED_EXTENSIONS"); v != "" {
		cfg.Upload.AllowedExtensions = splitAndTrim(v)
	}
	if v := os.Getenv("ALLOWED_MIME_TYPES"); v != "" {
		cfg.Upload.AllowedMimeTypes = splitAndTrim(v)
	}
	if v := os.Getenv("DETECTOR_MODE"); v != "" {
		cfg.Detector.Mode = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		cfg.Detector.ModelPath = v
	}
	if v := os.Getenv("MODEL_VERSION"); v != "" {
		cfg.Detector.ModelVersion = v
	}
	if v := os.Getenv("STORAGE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Storage.Enabled = enabled
		}
	}
	if v := os.Getenv("STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.Upload.MaxFileSize)
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("allowed extensions must not be empty")
	}
	if len(c.Upload.AllowedMimeTypes) == 0 {
		return fmt.Errorf("allowed mime types must not be empty")
	}
	if c.Detector.LatencyMin < 0 || c.Detector.LatencyMax < c.Detector.LatencyMin {
		return fmt.Errorf(
			"invalid detector latency range: min=%s max=%s",
			c.Detector.LatencyMin, c.Detector.LatencyMax,
		)
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		return fmt.Errorf("storage enabled but no path configured")
	}
	return nil
}
