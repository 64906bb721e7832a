package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/target/studio-ui-auth/config"
	"github.com/target/studio-ui-auth/internal/adapters/authroles"
	"github.com/target/studio-ui-auth/internal/adapters/postgres"
	redisadapter "github.com/target/studio-ui-auth/internal/adapters/redis"
	"github.com/target/studio-ui-auth/internal/ports"
	"github.com/target/studio-ui-auth/internal/service"
)

// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
const shutdownWaitTimeout = 15 * time.Second

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Sessions *service.SessionService
	Gate     *service.AccessGate
	CrossTab *service.CrossTabSync
	Prefs    ports.PrefsStore
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires adapters and services from the loaded configuration.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	provider, err := BuildIdentityProvider(cfg.Auth, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	roles, err := authroles.NewClaimsMapper(cfg.Auth.Claims.RolePath, cfg.Auth.Claims.AdminValue)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build claims mapper: %w", err)
	}

	paymentsSvc, err := BuildPaymentStatusService(cfg.Payments, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	eventBus := redisadapter.NewEventBus(deps.RedisClient, cfg.Redis.EventChannel, logger)

	sessions := service.NewSessionService(service.SessionServiceOptions{
		Provider: provider,
		Profiles: postgres.NewProfileStore(deps.DB),
		Roles:    roles,
		Events:   eventBus,
		Logger:   logger,
		Config:   cfg.Session,
	})

	gate := service.NewAccessGate(service.AccessGateOptions{
		Sessions: sessions,
		Payments: paymentsSvc,
		Logger:   logger,
		Config:   cfg.Gate,
	})

	crossTab := service.NewCrossTabSync(service.CrossTabSyncOptions{
		Source:  eventBus,
		Handler: sessions,
		Logger:  logger,
	})

	return ServiceContainer{
		Sessions: sessions,
		Gate:     gate,
		CrossTab: crossTab,
		Prefs:    redisadapter.NewPrefsStore(deps.RedisClient),
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal is received or a service
// fails, then stops everything gracefully.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	if enabled[config.ServiceModeHTTP] {
		server := NewHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})

		group.Go(func() error {
			logger.Info("starting HTTP server", "addr", server.Addr)
			if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", serveErr)
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
			defer cancel()
			return ShutdownHTTPServer(ShutdownConfig{
				Context: shutdownCtx,
				Server:  server,
				Logger:  logger,
			})
		})
	}

	if enabled[config.ServiceModeCrossTab] {
		if startErr := cfg.Services.CrossTab.Start(groupCtx); startErr != nil {
			return fmt.Errorf("start cross-tab sync: %w", startErr)
		}
		logger.Info("cross-tab auth event sync started")

		group.Go(func() error {
			<-groupCtx.Done()
			if stopErr := cfg.Services.CrossTab.Stop(); stopErr != nil {
				return fmt.Errorf("stop cross-tab sync: %w", stopErr)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		logger.Error("service error", "error", err)
		return err
	}

	logger.Info("services stopped")
	return nil
}
