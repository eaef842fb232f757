package detector

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	domainimage "deepscan-server/internal/domain/image"
	"deepscan-server/internal/platform/config"
	"deepscan-server/internal/platform/errors"
	"deepscan-server/internal/platform/logging"
)

const (
	defaultModelVersion = "MockModel v1.0"
	unloadedVersion     = "Unknown"
)

// GenerationMethods is the closed set of forgery techniques the synthetic
// variant may attribute a fake to.
var GenerationMethods = []string{"GAN", "Diffusion", "Face Swap"}

// FacialRegions is the fixed set of regions anomaly scores are drawn from.
var FacialRegions = []string{
	"Eyes",
	"Mouth",
	"Nose",
	"Skin Texture",
	"Lighting",
	"Hair",
	"Face Boundaries",
	"Background Consistency",
}

// Synthetic fabricates statistically plausible detection results without any
// real inference, so frontend work can proceed before a trained model exists.
// Its distributions are observable behavior that downstream consumers rely
// on, not placeholders.
type Synthetic struct {
	cfg     *config.DetectorConfig
	logger  *logging.Logger
	version string
	loaded  atomic.Bool
}

func NewSynthetic(cfg *config.DetectorConfig, logger *logging.Logger) *Synthetic {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Synthetic{
		cfg:     cfg,
		logger:  logger,
		version: unloadedVersion,
	}
}

// Load marks the model ready. It runs once at startup; the version string is
// established before the loaded flag flips, so ModelInfo never observes a
// half-initialized state.
func (s *Synthetic) Load(modelPath string) error {
	if s.loaded.Load() {
		return errors.New(errors.KindDetector, "detector.load", "model already loaded")
	}

	// Emulate a short model-loading delay.
	time.Sleep(100 * time.Millisecond)

	version := s.cfg.ModelVersion
	if version == "" {
		version = defaultModelVersion
	}
	s.version = version
	s.loaded.Store(true)

	s.logger.InfoTag("Detector", "synthetic model loaded: %s", version)
	return nil
}

// ModelInfo surfaces the current model state.
func (s *Synthetic) ModelInfo() ModelState {
	if !s.loaded.Load() {
		return ModelState{Version: unloadedVersion, IsLoaded: false}
	}
	return ModelState{Version: s.version, IsLoaded: true}
}

// Detect fabricates a verdict for the canonical image. Safe for concurrent
// use: all randomness comes from the shared math/rand source and nothing
// on the receiver is written after Load.
func (s *Synthetic) Detect(ctx context.Context, img *domainimage.Canonical) (*Result, error) {
	if !s.loaded.Load() {
		return nil, errors.New(errors.KindDetector, "detector.detect", "model not loaded")
	}
	if img == nil {
		return nil, errors.New(errors.KindDetector, "detector.detect", "canonical image is required")
	}

	start := time.Now()

	if err := s.sleepLatency(ctx); err != nil {
		return nil, errors.Wrap(errors.KindDetector, "detector.detect", "detection aborted", err)
	}

	isFake := rand.Intn(2) == 0

	var confidence float64
	if rand.Float64() < 0.7 {
		confidence = 75 + rand.Float64()*(98-75)
	} else {
		confidence = 60 + rand.Float64()*(75-60)
	}

	var method string
	if isFake && rand.Float64() < 0.8 {
		method = GenerationMethods[rand.Intn(len(GenerationMethods))]
	}

	anomalies := synthesizeAnomalies(isFake)

	return &Result{
		IsFake:           isFake,
		Confidence:       round1(confidence),
		GenerationMethod: method,
		ProcessingTimeMs: round2(float64(time.Since(start)) / float64(time.Millisecond)),
		Anomalies:        anomalies,
	}, nil
}

// sleepLatency waits a uniformly random duration within the configured range
// to emulate real inference latency, honoring context cancellation.
func (s *Synthetic) sleepLatency(ctx context.Context) error {
	if s.cfg.LatencyMax <= 0 {
		return nil
	}

	delay := s.cfg.LatencyMin
	if span := s.cfg.LatencyMax - s.cfg.LatencyMin; span > 0 {
		delay += time.Duration(rand.Float64() * float64(span))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// synthesizeAnomalies picks 4-6 distinct regions and scores them: fakes score
// uniform [40,95], real images uniform [5,45]. Result is sorted by score
// descending with a stable order for ties.
func synthesizeAnomalies(isFake bool) []AnomalyRegion {
	count := 4 + rand.Intn(3)

	order := rand.Perm(len(FacialRegions))
	anomalies := make([]AnomalyRegion, 0, count)
	for _, idx := range order[:count] {
		var score float64
		if isFake {
			score = 40 + rand.Float64()*(95-40)
		} else {
			score = 5 + rand.Float64()*(45-5)
		}
		anomalies = append(anomalies, AnomalyRegion{
			Region: FacialRegions[idx],
			Score:  round1(score),
		})
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].Score > anomalies[j].Score
	})

	return anomalies
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
