package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ergosit/posture-auth/internal/config"
	"github.com/ergosit/posture-auth/migrations"
	"github.com/ergosit/posture-auth/pkg/database"
	"github.com/ergosit/posture-auth/pkg/observability"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const serviceName = "posture-auth"

// Infrastructure holds the process-wide resources. Postgres is nil when the
// memory storage driver is selected and Redis is nil when it is disabled.
type Infrastructure interface {
	Postgres() *database.Postgres
	Redis() *database.Redis
	Logger() *zap.Logger
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &infrastructure{}

func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	if cfg.Storage.Driver == config.StorageDriverPostgres {
		postgres, err := database.NewPostgres(cfg.Postgres.DSN(), cfg.Postgres.QueryTimeout.Duration)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		i.postgres = postgres

		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(migrations.FS); err != nil {
				_ = i.close()
				return nil, err
			}
			logger.Info("database migrations applied")
		}
	} else {
		logger.Warn("using in-memory storage, data will not survive a restart")
	}

	if cfg.Redis.Enabled {
		redis, err := database.NewRedis(ctx, database.RedisOptions{
			Addr:     cfg.Redis.Address(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
			Timeout:  cfg.Redis.Timeout.Duration,
		})
		if err != nil {
			_ = i.close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		i.redis = redis
	}

	meterProvider, metricsHandler, err := observability.InitTelemetry(serviceName)
	if err != nil {
		_ = i.close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.meterProvider = meterProvider
	i.metricsHandler = metricsHandler

	return i, nil
}

func (i *infrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

// close releases the storage connections that were opened.
func (i *infrastructure) close() error {
	var errs []error
	if i.postgres != nil {
		errs = append(errs, i.postgres.Close())
	}
	if i.redis != nil {
		errs = append(errs, i.redis.Close())
	}
	return errors.Join(errs...)
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 2)

	go func() { errs <- i.close() }()
	go func() { errs <- observability.Shutdown(ctx, i.meterProvider, i.logger) }()

	return errors.Join(<-errs, <-errs)
}
