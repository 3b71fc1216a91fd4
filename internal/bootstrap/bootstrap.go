// Package bootstrap wires configuration, logging, storage and transports
// into a running server with graceful shutdown.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	domainauth "photocheck-server-go/internal/domain/auth"
	domaincache "photocheck-server-go/internal/domain/cache"
	"photocheck-server-go/internal/domain/compliance"
	domainface "photocheck-server-go/internal/domain/face"
	domainreport "photocheck-server-go/internal/domain/report"
	platformconfig "photocheck-server-go/internal/platform/config"
	platformerrors "photocheck-server-go/internal/platform/errors"
	platformlogging "photocheck-server-go/internal/platform/logging"
	platformobservability "photocheck-server-go/internal/platform/observability"
	platformstorage "photocheck-server-go/internal/platform/storage"
	httptransport "photocheck-server-go/internal/transport/http"
	httpphoto "photocheck-server-go/internal/transport/http/photo"
	httpreport "photocheck-server-go/internal/transport/http/report"
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
	config                *platformconfig.Config
	configPath            string
	logger                *platformlogging.Logger
	observabilityShutdown platformobservability.ShutdownFunc
	detector              domainface.Detector
	cache                 domaincache.Cache
}

// Run starts the whole service lifecycle: configuration, dependencies,
// serving, and graceful shutdown.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
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

	if shutdown := state.observabilityShutdown; shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.WarnTag("BOOT", "observability shutdown failed: %v", err)
			}
		}()
	}

	if state.cache != nil {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := state.cache.Close(closeCtx); err != nil {
				logger.WarnTag("CACHE", "cache close failed: %v", err)
			}
		}()
	}

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("BOOT", "server stopped cleanly")
	logger.Close()
	return nil
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

// InitGraph declares the initialisation steps in dependency order.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "storage:init-database",
			Title:     "Initialise database",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindStorage,
			Execute:   initDatabaseStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "Setup observability hooks",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "detector:init",
			Title:     "Initialise face detector",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindDetector,
			Execute:   initDetectorStep,
		},
		{
			ID:        "cache:init",
			Title:     "Initialise result cache",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindCache,
			Execute:   initCacheStep,
		},
	}
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
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialize logging provider", err)
	}

	state.logger = logger
	platformlogging.DefaultLogger = logger

	source := state.configPath
	if source == "" {
		source = "defaults"
	}
	logger.InfoTag("BOOT", "logging ready [%s] config=%s", state.config.Log.Level, source)
	return nil
}

func initDatabaseStep(_ context.Context, state *appState) error {
	if err := platformstorage.InitDatabase(state.config.Storage.Dir); err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "storage:init-database", "failed to initialize database", err)
	}
	state.logger.InfoTag("STORAGE", "database ready at %s", state.config.Storage.Dir)
	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	if state == nil || state.logger == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"observability:setup-hooks",
			"config/logger not initialised",
		)
	}

	cfg := platformobservability.Config{
		Enabled: state.config.Observability.Enabled ||
			strings.EqualFold(state.config.Log.Level, "debug"),
	}

	shutdown, err := platformobservability.Setup(ctx, cfg, state.logger.Slog())
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "observability:setup-hooks", "failed to setup observability hooks", err)
	}
	state.observabilityShutdown = shutdown
	return nil
}

// initDetectorStep loads the cascade classifier when enabled. Detector
// failure is not fatal: the heuristic estimator covers the face check.
func initDetectorStep(_ context.Context, state *appState) error {
	if !state.config.Detector.Enabled {
		state.logger.InfoTag("FACE", "detector disabled, heuristic estimator only")
		return nil
	}

	detector, err := domainface.NewPigoDetector(domainface.PigoConfig{
		CascadePath: state.config.Detector.CascadePath,
		MinSize:     state.config.Detector.MinSize,
		MaxSize:     state.config.Detector.MaxSize,
		MinQuality:  float32(state.config.Detector.MinQuality),
	}, state.logger)
	if err != nil {
		state.logger.WarnTag("FACE", "detector unavailable, falling back to heuristic: %v", err)
		return nil
	}

	state.detector = detector
	state.logger.InfoTag("FACE", "cascade detector ready: %s", state.config.Detector.CascadePath)
	return nil
}

func initCacheStep(_ context.Context, state *appState) error {
	cfg := domaincache.Config{
		Driver: state.config.Cache.Driver,
		TTL:    state.config.Cache.TTL,
	}
	if cfg.Driver == domaincache.DriverRedis {
		cfg.Redis = &domaincache.RedisConfig{
			Addr:     state.config.Cache.Redis.Addr,
			Username: state.config.Cache.Redis.Username,
			Password: state.config.Cache.Redis.Password,
			DB:       state.config.Cache.Redis.DB,
			Prefix:   state.config.Cache.Redis.Prefix,
		}
	}

	resultCache, err := domaincache.New(cfg)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindCache, "cache:init", "failed to initialize result cache", err)
	}
	state.cache = resultCache
	state.logger.InfoTag("CACHE", "result cache ready: driver=%s", cfg.Driver)
	return nil
}

func startHTTPServer(
	state *appState,
	g *errgroup.Group,
	groupCtx context.Context,
) (*http.Server, error) {
	config := state.config
	logger := state.logger

	var token *domainauth.Token
	if config.Server.Auth.Enabled {
		token = domainauth.NewToken(config.Server.Auth.Secret).WithTTL(config.Server.Auth.TTL)
	}

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config:     config,
		Logger:     logger,
		Token:      token,
		StaticRoot: config.Server.StaticDir,
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, httptransport.APIResponse{
				Success: false,
				Data:    gin.H{},
				Message: "api not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		c.Status(http.StatusNotFound)
	})

	validator := compliance.NewValidator(state.detector, logger)
	reportService := domainreport.NewService(
		platformstorage.NewReportRepository(platformstorage.GetDB()),
		logger,
	)

	photoService, err := httpphoto.NewService(config, logger, validator, reportService, state.cache)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "photo:new-service", "failed to create photo service", err)
	}
	reportTransport, err := httpreport.NewService(logger, reportService)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "report:new-service", "failed to create report service", err)
	}

	if err := photoService.Register(groupCtx, httpRouter.Secured); err != nil {
		return nil, err
	}
	if err := reportTransport.Register(groupCtx, httpRouter.Secured); err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:    config.Server.IP + ":" + strconv.Itoa(config.Server.Port),
		Handler: router,
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
	logger.InfoTag("BOOT", "received signal %v, shutting down", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("BOOT", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("BOOT", "all services stopped")
	case <-time.After(15 * time.Second):
		timeoutErr := errors.New("shutdown timed out")
		logger.ErrorTag("BOOT", "shutdown timed out, forcing exit")
		return timeoutErr
	}
	return nil
}
