package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"deepscan-server/internal/domain/analysis"
	"deepscan-server/internal/domain/detector"
	platformconfig "deepscan-server/internal/platform/config"
	platformerrors "deepscan-server/internal/platform/errors"
	platformlogging "deepscan-server/internal/platform/logging"
	platformstorage "deepscan-server/internal/platform/storage"
	httptransport "deepscan-server/internal/transport/http"
	httpapi "deepscan-server/internal/transport/http/api"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config     *platformconfig.Config
	configPath string
	logger     *platformlogging.Logger
	db         *gorm.DB
	history    *platformstorage.HistoryRepository
	detector   detector.Detector
	analysis   *analysis.Service
}

// Run drives the whole service lifecycle: configuration, dependency
// initialization, serving, and graceful shutdown.
func Run(ctx context.Context) error {
	state := &appState{}

	if err := executeInitSteps(ctx, InitGraph(), state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}

	logStartupBanner(state)

	defer func() {
		if state.db != nil {
			if err := platformstorage.Close(state.db); err != nil {
				logger.ErrorTag("Storage", "database not closed cleanly: %v", err)
			}
		}
		logger.Close()
	}()

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(rootCtx)

	// Derived from the group context so a failing server also unblocks the
	// shutdown wait, not just an operator signal.
	signalCtx, stop := signal.NotifyContext(groupCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	return waitForShutdown(signalCtx, cancel, logger, group)
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init",
			Title:     "Initialise logging",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "storage:init",
			Title:     "Initialise analysis history storage",
			DependsOn: []string{"config:load", "logging:init"},
			Kind:      platformerrors.KindStorage,
			Execute:   initStorageStep,
		},
		{
			ID:        "detector:load",
			Title:     "Select and load detector",
			DependsOn: []string{"config:load", "logging:init"},
			Kind:      platformerrors.KindDetector,
			Execute:   loadDetectorStep,
		},
		{
			ID:        "analysis:init",
			Title:     "Initialise analysis pipeline",
			DependsOn: []string{"storage:init", "detector:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initAnalysisStep,
		},
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "config:load", "failed to load configuration", err)
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	logger, err := platformlogging.New(platformlogging.Config{
		Level: state.config.Log.Level,
		Dir:   state.config.Log.Dir,
		File:  state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init", "failed to initialise logging", err)
	}
	state.logger = logger
	return nil
}

func initStorageStep(_ context.Context, state *appState) error {
	if !state.config.Storage.Enabled {
		state.logger.InfoTag("Storage", "analysis history persistence disabled")
		return nil
	}

	db, err := platformstorage.Open(state.config.Storage.Path)
	if err != nil {
		return err
	}
	state.db = db
	state.history = platformstorage.NewHistoryRepository(db)
	return nil
}

func loadDetectorStep(_ context.Context, state *appState) error {
	det, err := detector.New(&state.config.Detector, state.logger)
	if err != nil {
		return err
	}

	modelPath := state.config.Detector.ModelPath
	if state.config.Detector.Mode == "mock" || state.config.Detector.Mode == "" {
		modelPath = ""
	}
	if err := det.Load(modelPath); err != nil {
		return platformerrors.Wrap(platformerrors.KindDetector, "detector:load", "failed to load detector model", err)
	}

	state.detector = det
	return nil
}

func initAnalysisStep(_ context.Context, state *appState) error {
	svc, err := analysis.NewService(state.config, state.detector, state.history, state.logger)
	if err != nil {
		return err
	}
	state.analysis = svc
	return nil
}

func logStartupBanner(state *appState) {
	cfg := state.config
	logger := state.logger

	logger.InfoTag("Bootstrap", "%s v%s", cfg.API.Title, cfg.API.Version)
	logger.InfoTag("Bootstrap", "config source: %s", state.configPath)
	logger.InfoTag("Bootstrap", "detector mode: %s", cfg.Detector.Mode)
	logger.InfoTag("Bootstrap", "model version: %s", state.detector.ModelInfo().Version)
	logger.InfoTag("Bootstrap", "CORS origins: %s", strings.Join(cfg.CORS.Origins, ", "))
	logger.InfoTag("Bootstrap", "max upload size: %.1fMB", cfg.Upload.MaxFileSizeMB())
	logger.InfoTag("Bootstrap", "allowed formats: %s", strings.Join(cfg.Upload.AllowedExtensions, ", "))
}

func startHTTPServer(
	state *appState,
	g *errgroup.Group,
	groupCtx context.Context,
) (*http.Server, error) {
	config := state.config
	logger := state.logger

	router, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "http:build-router", "failed to build router", err)
	}

	apiService, err := httpapi.NewService(config, logger, state.analysis)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "http:init-api", "failed to create API service", err)
	}
	if err := apiService.Register(groupCtx, router.Engine, router.API); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "http:register-routes", "failed to register routes", err)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler: router.Engine,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "server listening on http://%s", httpServer.Addr)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "server shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "server shut down cleanly")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "server failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("Bootstrap", "shutdown signal received, cleaning up")

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("Bootstrap", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("Bootstrap", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("Bootstrap", "shutdown timed out, forcing exit")
		return errors.New("shutdown timed out")
	}
	return nil
}
