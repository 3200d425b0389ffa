package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"gscgateway/internal/app/bootstrap"
	"gscgateway/internal/cfg"
	"gscgateway/internal/service/auth"
	"gscgateway/internal/service/search"
	"gscgateway/internal/service/session"
	"gscgateway/pkg/cache"
	"gscgateway/pkg/logger"
	"gscgateway/pkg/oauth2"

	"github.com/prometheus/client_golang/prometheus"
)

// Infrastructure holds the stateful dependencies that need lifecycle
// management (initialization and shutdown).
type Infrastructure struct {
	Cache          cache.Cache
	OAuth2Manager  *oauth2.Manager
	Logger         logger.Logger
	Registry       *prometheus.Registry
	MetricsHandler http.Handler
	shutdownOTel   func(context.Context) error
}

// Close shuts down all infrastructure resources in reverse order of
// initialization.
func (i *Infrastructure) Close(ctx context.Context) error {
	var errs []error

	if i.OAuth2Manager != nil {
		i.OAuth2Manager.Cleanup()
	}

	if i.Cache != nil {
		i.Logger.Info(ctx, "Closing cache connections")
		if err := i.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache shutdown: %w", err))
		}
	}

	if i.shutdownOTel != nil {
		i.Logger.Info(ctx, "Shutting down observability")
		if err := i.shutdownOTel(ctx); err != nil {
			errs = append(errs, fmt.Errorf("observability shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("infrastructure shutdown errors: %w", errors.Join(errs...))
	}

	return nil
}

// Services holds the domain services built on top of Infrastructure.
type Services struct {
	Auth   *auth.Service
	Search *search.Service
	Codec  *session.Codec
}

// Provider is the composition root that wires Infrastructure and Services
// together.
type Provider struct {
	Infra    *Infrastructure
	Services *Services
	Config   *cfg.Config
}

// NewProvider creates and initializes all application dependencies.
func NewProvider(ctx context.Context, config *cfg.Config) (*Provider, error) {
	appLogger := logger.New(config.AppEnv, config.LogFormat)
	appLogger.Info(ctx, "Initializing application provider...")

	shutdownOTel, err := bootstrap.InitOtel(ctx, &config.Observability)
	if err != nil {
		return nil, fmt.Errorf("observability setup: %w", err)
	}

	infra, err := initInfrastructure(ctx, config, appLogger, shutdownOTel)
	if err != nil {
		if shutdownErr := shutdownOTel(ctx); shutdownErr != nil {
			log.Printf("Warning: failed to shutdown OTel during init failure: %v", shutdownErr)
		}
		return nil, fmt.Errorf("infrastructure initialization: %w", err)
	}

	services, err := initServices(config, infra)
	if err != nil {
		_ = infra.Close(ctx)
		return nil, fmt.Errorf("services initialization: %w", err)
	}

	appLogger.Info(ctx, "Application provider initialized successfully",
		logger.Field{Key: "state_store", Value: stateStoreName(infra.Cache)},
		logger.Field{Key: "tracing", Value: config.Observability.TracingEnabled()},
	)

	return &Provider{
		Infra:    infra,
		Services: services,
		Config:   config,
	}, nil
}

// initInfrastructure initializes resources from the bottom up.
func initInfrastructure(
	ctx context.Context,
	config *cfg.Config,
	appLogger logger.Logger,
	shutdownOTel func(context.Context) error,
) (*Infrastructure, error) {
	registry, metricsHandler := bootstrap.InitMetrics()

	infra := &Infrastructure{
		Logger:         appLogger,
		Registry:       registry,
		MetricsHandler: metricsHandler,
		shutdownOTel:   shutdownOTel,
	}

	stateCache, err := bootstrap.InitCache(ctx, &config.Redis)
	if err != nil {
		return nil, fmt.Errorf("cache initialization: %w", err)
	}
	infra.Cache = stateCache

	oauth2Manager, err := bootstrap.InitOAuth2(ctx, config, stateCache, appLogger)
	if err != nil {
		if stateCache != nil {
			_ = stateCache.Close()
		}
		return nil, fmt.Errorf("oauth2 initialization: %w", err)
	}
	infra.OAuth2Manager = oauth2Manager

	return infra, nil
}

func initServices(config *cfg.Config, infra *Infrastructure) (*Services, error) {
	codec, err := session.NewCodec(config.OAuth2.SessionSecret, config.OAuth2.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("session codec: %w", err)
	}

	searchService := search.NewService(
		infra.OAuth2Manager.Provider(),
		search.NewQueryBuilder(),
		config.SearchConsole.Endpoint,
		infra.Logger,
		search.NewUpstreamMetrics(infra.Registry),
	)

	return &Services{
		Auth:   auth.NewService(infra.OAuth2Manager, codec, config.FrontendURL, infra.Logger),
		Search: searchService,
		Codec:  codec,
	}, nil
}

func stateStoreName(c cache.Cache) string {
	if c == nil {
		return "memory"
	}
	return "redis"
}
