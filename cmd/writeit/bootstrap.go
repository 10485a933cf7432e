package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"strings"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"

	"github.com/writeit-dev/writeit/internal/adapters/clients/llm"
	adapthttp "github.com/writeit-dev/writeit/internal/adapters/http"
	"github.com/writeit-dev/writeit/internal/adapters/http/handlers"
	"github.com/writeit-dev/writeit/internal/adapters/http/middleware"
	"github.com/writeit-dev/writeit/internal/adapters/store/inmem"
	"github.com/writeit-dev/writeit/internal/adapters/store/rdb"
	"github.com/writeit-dev/writeit/internal/app"
	"github.com/writeit-dev/writeit/internal/container"
	"github.com/writeit-dev/writeit/internal/domain/configset"
	"github.com/writeit-dev/writeit/internal/platform/config"
	"github.com/writeit-dev/writeit/internal/platform/health"
	"github.com/writeit-dev/writeit/internal/platform/httpclient"
	"github.com/writeit-dev/writeit/internal/platform/logging"
	"github.com/writeit-dev/writeit/internal/platform/telemetry"
	"github.com/writeit-dev/writeit/internal/ports"
)

const otelShutdownTimeout = 5 * time.Second

// runtime bundles everything a command needs: loaded config, the logger,
// the wired container, and telemetry providers (nil-safe when disabled).
type runtime struct {
	cfg       *config.Config
	logger    *slog.Logger
	container *container.Container
	otel      *otelProviders
}

// newRuntime loads config for the profile, builds the logger and (when
// enabled) telemetry, and registers the full dependency graph. Services are
// built lazily on first resolve, so one-shot commands only pay for what
// they use.
func newRuntime(ctx context.Context, profile string) (*runtime, error) {
	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	c := container.New()
	if err := registerDependencies(c, cfg, logger, otel.metrics); err != nil {
		_ = otel.Shutdown(ctx)
		return nil, fmt.Errorf("registering dependencies: %w", err)
	}

	return &runtime{cfg: cfg, logger: logger, container: c, otel: otel}, nil
}

// Close disposes container singletons in reverse construction order, then
// flushes telemetry.
func (rt *runtime) Close(ctx context.Context) error {
	var errs []error
	if err := rt.container.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("closing container: %w", err))
	}

	otelCtx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer cancel()
	if err := rt.otel.Shutdown(otelCtx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}
	return errors.Join(errs...)
}

// withRuntime builds the runtime for one-shot commands and guarantees
// disposal after the command body returns.
func withRuntime(ctx context.Context, profile string, fn func(ctx context.Context, rt *runtime) error) error {
	rt, err := newRuntime(ctx, profile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(context.WithoutCancel(ctx)); cerr != nil {
			rt.logger.Error("runtime shutdown error", slog.Any("error", cerr))
		}
	}()
	return fn(ctx, rt)
}

// storeHandle owns the database connection so the container can close it
// during disposal. Nil db means the in-memory store is active.
type storeHandle struct {
	db *gorm.DB
}

// Name identifies the store in readiness output.
func (h *storeHandle) Name() string { return "store" }

// HealthCheck pings the database. The in-memory store is always healthy.
func (h *storeHandle) HealthCheck(ctx context.Context) error {
	if h.db == nil {
		return nil
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Shutdown closes the underlying database connection.
func (h *storeHandle) Shutdown(context.Context) error {
	if h.db == nil {
		return nil
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return sqlDB.Close()
}

func registerDependencies(c *container.Container, cfg *config.Config, logger *slog.Logger, metrics *telemetry.Metrics) error {
	container.MustProvideValue(c, cfg)
	container.MustProvideValue(c, logger)
	container.MustProvideValue(c, metrics)
	container.MustProvideValue(c, configset.DefaultSchema())

	// Persistence. The store URL selects the backend: sqlite:<dsn> for the
	// durable store, inmem: for the ephemeral one.
	if strings.HasPrefix(cfg.Store.URL, "inmem") {
		registerInmemStore(c)
	} else {
		registerSQLiteStore(c, cfg.Store.URL)
	}

	// Downstream completion API.
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (*httpclient.Client, error) {
		metrics, err := container.Resolve[*telemetry.Metrics](r)
		if err != nil {
			return nil, err
		}
		return httpclient.New(&cfg.Client, "completion-api", metrics, logger), nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (ports.CompletionClient, error) {
		client, err := container.Resolve[*httpclient.Client](r)
		if err != nil {
			return nil, err
		}
		return llm.New(client, cfg.Client.APIKey, logger), nil
	})

	// Application services.
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (ports.WorkspaceService, error) {
		repo, err := container.Resolve[ports.WorkspaceRepository](r)
		if err != nil {
			return nil, err
		}
		return app.NewWorkspaceService(repo, cfg.Workspace.BaseDir, logger), nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (ports.ConfigService, error) {
		schema, err := container.Resolve[*configset.Schema](r)
		if err != nil {
			return nil, err
		}
		workspaces, err := container.Resolve[ports.WorkspaceRepository](r)
		if err != nil {
			return nil, err
		}
		settings, err := container.Resolve[ports.SettingsRepository](r)
		if err != nil {
			return nil, err
		}
		return app.NewConfigService(schema, workspaces, settings, logger), nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (ports.PipelineService, error) {
		pipelines, err := container.Resolve[ports.PipelineRepository](r)
		if err != nil {
			return nil, err
		}
		workspaces, err := container.Resolve[ports.WorkspaceRepository](r)
		if err != nil {
			return nil, err
		}
		configSvc, err := container.Resolve[ports.ConfigService](r)
		if err != nil {
			return nil, err
		}
		completion, err := container.Resolve[ports.CompletionClient](r)
		if err != nil {
			return nil, err
		}
		metrics, err := container.Resolve[*telemetry.Metrics](r)
		if err != nil {
			return nil, err
		}
		return app.NewPipelineService(pipelines, workspaces, configSvc, completion, metrics, logger), nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (ports.AnalyticsService, error) {
		workspaces, err := container.Resolve[ports.WorkspaceRepository](r)
		if err != nil {
			return nil, err
		}
		pipelines, err := container.Resolve[ports.PipelineRepository](r)
		if err != nil {
			return nil, err
		}
		return app.NewAnalyticsService(workspaces, pipelines, logger), nil
	})

	// Health.
	container.MustProvide(c, container.Singleton, func(container.Resolver) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	// HTTP surface.
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (*handlers.WorkspaceHandler, error) {
		svc, err := container.Resolve[ports.WorkspaceService](r)
		if err != nil {
			return nil, err
		}
		analytics, err := container.Resolve[ports.AnalyticsService](r)
		if err != nil {
			return nil, err
		}
		return handlers.NewWorkspaceHandler(svc, analytics), nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (*handlers.ConfigHandler, error) {
		svc, err := container.Resolve[ports.ConfigService](r)
		if err != nil {
			return nil, err
		}
		return handlers.NewConfigHandler(svc), nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (*handlers.PipelineHandler, error) {
		svc, err := container.Resolve[ports.PipelineService](r)
		if err != nil {
			return nil, err
		}
		return handlers.NewPipelineHandler(svc), nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (*handlers.HealthHandler, error) {
		registry, err := container.Resolve[ports.HealthRegistry](r)
		if err != nil {
			return nil, err
		}
		return handlers.NewHealthHandler(registry), nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (nethttp.Handler, error) {
		workspaceH, err := container.Resolve[*handlers.WorkspaceHandler](r)
		if err != nil {
			return nil, err
		}
		configH, err := container.Resolve[*handlers.ConfigHandler](r)
		if err != nil {
			return nil, err
		}
		pipelineH, err := container.Resolve[*handlers.PipelineHandler](r)
		if err != nil {
			return nil, err
		}
		healthH, err := container.Resolve[*handlers.HealthHandler](r)
		if err != nil {
			return nil, err
		}
		metrics, err := container.Resolve[*telemetry.Metrics](r)
		if err != nil {
			return nil, err
		}

		return adapthttp.NewRouter(workspaceH, configH, pipelineH, healthH,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.WriteTimeout),
		), nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (*adapthttp.Server, error) {
		handler, err := container.Resolve[nethttp.Handler](r)
		if err != nil {
			return nil, err
		}
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})

	return nil
}

func registerInmemStore(c *container.Container) {
	container.MustProvide(c, container.Singleton, func(container.Resolver) (*storeHandle, error) {
		return &storeHandle{}, nil
	})
	container.MustProvide(c, container.Singleton, func(container.Resolver) (*inmem.Store, error) {
		return inmem.NewStore(), nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (ports.WorkspaceRepository, error) {
		store, err := container.Resolve[*inmem.Store](r)
		if err != nil {
			return nil, err
		}
		return store.Workspaces, nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (ports.PipelineRepository, error) {
		store, err := container.Resolve[*inmem.Store](r)
		if err != nil {
			return nil, err
		}
		return store.Pipelines, nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (ports.SettingsRepository, error) {
		store, err := container.Resolve[*inmem.Store](r)
		if err != nil {
			return nil, err
		}
		return store.Settings, nil
	})
}

func registerSQLiteStore(c *container.Container, storeURL string) {
	container.MustProvide(c, container.Singleton, func(container.Resolver) (*storeHandle, error) {
		db, err := rdb.OpenFromURL(storeURL)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		if err := rdb.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("migrating store: %w", err)
		}
		return &storeHandle{db: db}, nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (ports.WorkspaceRepository, error) {
		handle, err := container.Resolve[*storeHandle](r)
		if err != nil {
			return nil, err
		}
		return rdb.NewWorkspaceRepository(handle.db), nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (ports.PipelineRepository, error) {
		handle, err := container.Resolve[*storeHandle](r)
		if err != nil {
			return nil, err
		}
		return rdb.NewPipelineRepository(handle.db), nil
	})
	container.MustProvide(c, container.Singleton, func(r container.Resolver) (ports.SettingsRepository, error) {
		handle, err := container.Resolve[*storeHandle](r)
		if err != nil {
			return nil, err
		}
		return rdb.NewSettingsRepository(handle.db), nil
	})
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}
