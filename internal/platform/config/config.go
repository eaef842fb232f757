package config

import "time"

type Config struct {
	API      APIConfig      `yaml:"api"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
	Upload   UploadConfig   `yaml:"upload"`
	Detector DetectorConfig `yaml:"detector"`
	Storage  StorageConfig  `yaml:"storage"`
}

// APIConfig carries the static service descriptor exposed on the index endpoints.
type APIConfig struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

// UploadConfig bounds what the validator accepts.
type UploadConfig struct {
	MaxFileSize       int64    `yaml:"max_file_size"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	AllowedMimeTypes  []string `yaml:"allowed_mime_types"`
}

// DetectorConfig selects and tunes the detector variant.
// InferenceTimeout and RateLimit are reserved knobs, accepted but not
// currently enforced anywhere in the pipeline.
type DetectorConfig struct {
	Mode             string        `yaml:"mode"`
	ModelPath        string        `yaml:"model_path"`
	ModelVersion     string        `yaml:"model_version"`
	LatencyMin       time.Duration `yaml:"latency_min"`
	LatencyMax       time.Duration `yaml:"latency_max"`
	InferenceTimeout time.Duration `yaml:"inference_timeout"`
	RateLimit        int           `yaml:"rate_limit"`
}

type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MaxFileSizeMB reports the upload limit in megabytes for user-facing messages.
func (c UploadConfig) MaxFileSizeMB() float64 {
	return float64(c.MaxFileSize) / (1024 * 1024)
}
