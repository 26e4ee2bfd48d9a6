package main

import (
	"context"
	"fmt"

	"backoffice/internal/config"
	"backoffice/internal/events"
	httpapi "backoffice/internal/http"
	"backoffice/internal/logger"
	"backoffice/internal/metrics"
	"backoffice/internal/repository"
	"backoffice/internal/repository/mongostore"
	"backoffice/internal/repository/sqlstore"
	"backoffice/internal/seed"
	"backoffice/internal/service"
)

// app собранные зависимости процесса
type app struct {
	cfg      *config.Config
	log      logger.Logger
	metrics  *metrics.Metrics
	store    repository.Store
	services httpapi.Services
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		s, err := mongostore.Connect(ctx, cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Database)
		if err != nil {
			return repository.Store{}, err
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(ctx)
			return repository.Store{}, err
		}
		log.Infof(ctx, "[Storage] mongo %s", cfg.Storage.Mongo.Database)
		return s.Bundle(), nil
	case config.DriverMySQL:
		db, err := sqlstore.Open(cfg.Storage.MySQL.DSN)
		if err != nil {
			return repository.Store{}, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close(ctx)
			return repository.Store{}, err
		}
		log.Infof(ctx, "[Storage] mysql")
		return db.Bundle(), nil
	default:
		log.Infof(ctx, "[Storage] in-memory, data is lost on restart")
		return repository.NewMemoryBundle(), nil
	}
}

// newApp собирает хранилище, издателя событий и сервисы. cleanup закрывает всё открытое.
func newApp(ctx context.Context, cfg *config.Config) (*app, func(), error) {
	zl, err := logger.NewZapLogger(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(ctx, cfg, zl)
	if err != nil {
		return nil, nil, err
	}

	var (
		publisher events.Publisher = events.NewLogPublisher(zl)
		redisPub  *events.RedisPublisher
	)
	if cfg.Redis.Enabled {
		redisPub, err = events.NewRedisPublisher(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel)
		if err != nil {
			if store.Close != nil {
				_ = store.Close(ctx)
			}
			return nil, nil, err
		}
		publisher = redisPub
	}

	m := metrics.New()
	opts := []service.Option{
		service.WithLogger(zl),
		service.WithPublisher(publisher),
		service.WithMetrics(m),
		service.WithSettlePaymentOnCompletion(cfg.Orders.SettlePaymentOnCompletion),
		service.WithLowStockThreshold(cfg.Stock.LowStockThreshold),
	}
	a := &app{
		cfg:     cfg,
		log:     zl,
		metrics: m,
		store:   store,
		services: httpapi.Services{
			Orders:    service.NewOrderService(store.Products, store.Orders, store.Stock, store.Tx, opts...),
			Stock:     service.NewStockService(store.Products, store.Stock, store.Tx, opts...),
			Catalog:   service.NewCatalogService(store.Products, store.Categories, store.Tx, opts...),
			Admins:    service.NewAdminService(store.Admins, store.Tx, opts...),
			Invoices:  service.NewInvoiceService(store.Orders),
			Dashboard: service.NewDashboardService(store, opts...),
		},
	}

	cleanup := func() {
		ctx := context.Background()
		if redisPub != nil {
			if err := redisPub.Close(); err != nil {
				zl.Warnf(ctx, "[Events] close redis: %v", err)
			}
		}
		if store.Close != nil {
			if err := store.Close(ctx); err != nil {
				zl.Warnf(ctx, "[Storage] close: %v", err)
			}
		}
		_ = zl.Sync()
	}
	return a, cleanup, nil
}

func (a *app) seed(ctx context.Context, path string) (seed.Result, error) {
	f, err := seed.Load(path)
	if err != nil {
		return seed.Result{}, err
	}
	return seed.Apply(ctx, f, seed.Target{
		Catalog: a.services.Catalog,
		Stock:   a.services.Stock,
		Admins:  a.services.Admins,
	}, a.log)
}
