package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"deepscan-server/internal/domain/detector"
	domainimage "deepscan-server/internal/domain/image"
	"deepscan-server/internal/platform/config"
	"deepscan-server/internal/platform/errors"
	"deepscan-server/internal/platform/logging"
	"deepscan-server/internal/platform/storage"
)

// Service orchestrates one analysis request: validate the upload, normalize
// the image, hand it to the detector, and shape the public report. Requests
// are independent; the service holds no per-request state.
type Service struct {
	cfg       *config.Config
	validator *domainimage.Validator
	processor *domainimage.Processor
	detector  detector.Detector
	history   *storage.HistoryRepository
	logger    *logging.Logger
}

// NewService wires the pipeline. The history repository is optional; passing
// nil disables persistence.
func NewService(
	cfg *config.Config,
	det detector.Detector,
	history *storage.HistoryRepository,
	logger *logging.Logger,
) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "analysis.new", "config is required")
	}
	if det == nil {
		return nil, errors.New(errors.KindConfig, "analysis.new", "detector is required")
	}
	if logger == nil {
		logger = logging.DefaultLogger
	}

	return &Service{
		cfg:       cfg,
		validator: domainimage.NewValidator(&cfg.Upload, logger),
		processor: domainimage.NewProcessor(),
		detector:  det,
		history:   history,
		logger:    logger,
	}, nil
}

// Analyze runs the full pipeline. Validation failures return a
// *image.ValidationError; anything else is wrapped with a platform error kind
// so the transport layer can distinguish client faults from server faults.
func (s *Service) Analyze(ctx context.Context, upload domainimage.Upload) (*Report, error) {
	decoded, meta, err := s.validator.Validate(upload)
	if err != nil {
		return nil, err
	}

	canonical := s.processor.Normalize(decoded)

	result, err := s.detector.Detect(ctx, canonical)
	if err != nil {
		return nil, errors.Wrap(errors.KindDetector, "analysis.analyze", "detection failed", err)
	}

	report := s.shapeReport(result)

	s.logger.InfoTag(
		"Analysis",
		"%s: fake=%v confidence=%.1f regions=%d (%.2fms)",
		meta.Filename, result.IsFake, result.Confidence,
		len(result.Anomalies), result.ProcessingTimeMs,
	)

	s.recordHistory(ctx, meta, result)

	return report, nil
}

func (s *Service) shapeReport(result *detector.Result) *Report {
	anomalies := make([]AnomalyRegion, 0, len(result.Anomalies))
	for _, a := range result.Anomalies {
		anomalies = append(anomalies, AnomalyRegion{Region: a.Region, Score: a.Score})
	}

	var method *string
	if result.GenerationMethod != "" {
		m := result.GenerationMethod
		method = &m
	}

	return &Report{
		IsFake:           result.IsFake,
		Confidence:       result.Confidence,
		GenerationMethod: method,
		HeatmapURL:       nil,
		Details: Details{
			ProcessingTime: result.ProcessingTimeMs,
			ModelVersion:   s.detector.ModelInfo().Version,
			Anomalies:      anomalies,
		},
	}
}

// recordHistory persists the analysis best-effort: a storage failure is
// logged and never surfaces to the caller.
func (s *Service) recordHistory(ctx context.Context, meta *domainimage.Metadata, result *detector.Result) {
	if s.history == nil {
		return
	}

	record := &storage.AnalysisRecord{
		ID:               uuid.NewString(),
		Filename:         meta.Filename,
		Format:           meta.Format,
		Width:            meta.Width,
		Height:           meta.Height,
		IsFake:           result.IsFake,
		Confidence:       result.Confidence,
		GenerationMethod: result.GenerationMethod,
		ProcessingTimeMs: result.ProcessingTimeMs,
		ModelVersion:     s.detector.ModelInfo().Version,
		CreatedAt:        time.Now(),
	}

	if err := s.history.Save(ctx, record); err != nil {
		s.logger.WarnTag("Analysis", "failed to record analysis history: %v", err)
	}
}

// Health projects the current model state plus static configuration.
func (s *Service) Health() HealthStatus {
	state := s.detector.ModelInfo()
	return HealthStatus{
		Status:       "healthy",
		Version:      s.cfg.API.Version,
		ModelLoaded:  state.IsLoaded,
		ModelVersion: state.Version,
	}
}

// History returns recent analysis records; it errors when persistence is
// disabled.
func (s *Service) History(ctx context.Context, limit int) ([]storage.AnalysisRecord, error) {
	if s.history == nil {
		return nil, errors.New(errors.KindStorage, "analysis.history", "history storage is disabled")
	}
	return s.history.Recent(ctx, limit)
}

// HistoryEnabled reports whether analysis records are being persisted.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}
