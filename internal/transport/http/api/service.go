package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"deepscan-server/internal/domain/analysis"
	domainimage "deepscan-server/internal/domain/image"
	"deepscan-server/internal/platform/config"
	"deepscan-server/internal/platform/errors"
	"deepscan-server/internal/platform/logging"
	httptransport "deepscan-server/internal/transport/http"
)

// Service is the HTTP transport for the analysis pipeline.
type Service struct {
	cfg      *config.Config
	logger   *logging.Logger
	analysis *analysis.Service
}

func NewService(
	cfg *config.Config,
	logger *logging.Logger,
	analysisService *analysis.Service,
) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "api.new", "config is required")
	}
	if analysisService == nil {
		return nil, errors.New(errors.KindConfig, "api.new", "analysis service is required")
	}
	if logger == nil {
		logger = logging.DefaultLogger
	}

	return &Service{
		cfg:      cfg,
		logger:   logger,
		analysis: analysisService,
	}, nil
}

// Register wires the API routes onto the engine.
func (s *Service) Register(ctx context.Context, engine *gin.Engine, apiGroup *gin.RouterGroup) error {
	apiGroup.POST("/analyze", s.handleAnalyze)
	apiGroup.GET("/health", s.handleHealth)
	apiGroup.GET("/", s.handleIndex)
	if s.analysis.HistoryEnabled() {
		apiGroup.GET("/history", s.handleHistory)
	}

	engine.GET("/", s.handleIndex)

	s.logger.InfoTag("HTTP", "analysis routes registered")
	return nil
}

// handleAnalyze accepts a multipart upload in the "image" field and runs the
// detection pipeline. Validation failures map to 4xx with the specific
// violated constraint; everything else becomes a 500 envelope.
func (s *Service) handleAnalyze(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	upload := domainimage.Upload{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}

	report, err := s.analysis.Analyze(c.Request.Context(), upload)
	if err != nil {
		if verr, ok := domainimage.AsValidation(err); ok {
			s.logger.WarnTag("HTTP", "upload rejected: %s", verr.Message)
			httptransport.RespondError(c, statusForValidation(verr.Code), verr.Message)
			return
		}

		s.logger.ErrorTag("HTTP", "analysis failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "Analysis failed: internal error")
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, report)
}

func statusForValidation(code domainimage.ValidationCode) int {
	switch code {
	case domainimage.CodeUnsupportedMimeType:
		return http.StatusUnsupportedMediaType
	case domainimage.CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

func (s *Service) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.analysis.Health())
}

func (s *Service) handleIndex(c *gin.Context) {
	endpoints := gin.H{
		"analyze": "/api/analyze (POST)",
		"health":  "/api/health (GET)",
	}
	if s.analysis.HistoryEnabled() {
		endpoints["history"] = "/api/history (GET)"
	}

	c.JSON(http.StatusOK, gin.H{
		"name":        s.cfg.API.Title,
		"version":     s.cfg.API.Version,
		"description": s.cfg.API.Description,
		"endpoints":   endpoints,
	})
}

func (s *Service) handleHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "limit must be an integer")
		return
	}

	records, err := s.analysis.History(c.Request.Context(), limit)
	if err != nil {
		s.logger.ErrorTag("HTTP", "history query failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to load analysis history")
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"count":   len(records),
		"records": records,
	})
}
