package config

import "time"

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Title:       "Deepfake Detection API",
			Version:     "1.0.0",
			Description: "AI-powered deepfake image detection service",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "data/logs",
			File:  "server.log",
		},
		CORS: CORSConfig{
			Origins: []string{
				"http://localhost:3000",
				"http://localhost:3001",
				"http://127.0.0.1:3000",
			},
		},
		Upload: UploadConfig{
			MaxFileSize:       10 * 1024 * 1024,
			AllowedExtensions: []string{".jpg", ".jpeg", ".png"},
			AllowedMimeTypes:  []string{"image/jpeg", "image/png"},
		},
		Detector: DetectorConfig{
			Mode:             "mock",
			ModelPath:        "models/detector_model.pth",
			ModelVersion:     "MockModel v1.0",
			LatencyMin:       500 * time.Millisecond,
			LatencyMax:       2500 * time.Millisecond,
			InferenceTimeout: 30 * time.Second,
			RateLimit:        60,
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    "data/deepscan.db",
		},
	}
}
