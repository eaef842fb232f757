package detector

import (
	"context"

	domainimage "deepscan-server/internal/domain/image"
	"deepscan-server/internal/platform/config"
	"deepscan-server/internal/platform/errors"
	"deepscan-server/internal/platform/logging"
)

// ModelState is the process-wide detector state: written once by Load at
// startup, read on every request afterwards.
type ModelState struct {
	Version  string
	IsLoaded bool
}

// AnomalyRegion is a named structural area with a suspicion score in [0,100].
type AnomalyRegion struct {
	Region string
	Score  float64
}

// Result is a single detection verdict. Anomalies are sorted by score
// descending and contain no duplicate region names.
type Result struct {
	IsFake           bool
	Confidence       float64
	GenerationMethod string
	ProcessingTimeMs float64
	Anomalies        []AnomalyRegion
}

// Detector is the pluggable detection capability. Load is called exactly
// once before a detector serves traffic; Detect must then be safe for
// concurrent use and must not mutate state shared across calls.
type Detector interface {
	Load(modelPath string) error
	Detect(ctx context.Context, img *domainimage.Canonical) (*Result, error)
	ModelInfo() ModelState
}

// New selects the detector variant from configuration. Until a real model
// ships, every mode resolves to the synthetic variant; unrecognized modes log
// a warning instead of failing startup.
func New(cfg *config.DetectorConfig, logger *logging.Logger) (Detector, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "detector.new", "detector config is required")
	}
	if logger == nil {
		logger = logging.DefaultLogger
	}

	switch cfg.Mode {
	case "", "mock":
		return NewSynthetic(cfg, logger), nil
	default:
		logger.WarnTag(
			"Detector",
			"mode %q has no real implementation yet, falling back to synthetic variant",
			cfg.Mode,
		)
		return NewSynthetic(cfg, logger), nil
	}
}
