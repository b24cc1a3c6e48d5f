package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"material-reconciler/core/cache"
	"material-reconciler/core/config"
	"material-reconciler/core/database"
	"material-reconciler/core/logger"
	"material-reconciler/core/reconcile"
	"material-reconciler/core/storage"
	"material-reconciler/feature/materials/catalog"
	"material-reconciler/feature/materials/mappings"
	"material-reconciler/feature/materials/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps holds the shared resources of every command.
type deps struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	storage storage.Client
	redis   *redis.Client

	closers []func() error
}

// bootstrap loads configuration and opens the optional connections. A
// missing database or cache is logged; commands that need one fail later
// with a clear error.
func bootstrap(ctx context.Context) (*deps, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	d := &deps{cfg: cfg, logger: logg}

	if conn, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional database connection failed", zap.Error(err))
	} else {
		d.db = conn
		logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
		if cfg.Database.AutoMigrate {
			if err := models.AutoMigrate(conn, cfg.Database.Driver == "sqlite"); err != nil {
				logg.Warn("Auto-migration failed", zap.Error(err))
			}
		}
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	d.storage = client

	rdb, err := cache.NewRedisClient(ctx, cfg.Cache)
	switch {
	case err == nil:
		d.redis = rdb
		d.closers = append(d.closers, rdb.Close)
		logg.Info("Connected to mapping cache", zap.String("addr", cfg.Cache.Addr))
	case errors.Is(err, cache.ErrDisabled):
	default:
		logg.Warn("Mapping cache unavailable, continuing without it", zap.Error(err))
	}

	return d, nil
}

// catalog returns the configured catalog source.
func (d *deps) catalog() (reconcile.Catalog, error) {
	switch d.cfg.Catalog.Source {
	case "storage":
		return catalog.NewSnapshotCatalog(d.storage, d.cfg.Storage.Bucket, d.cfg.Catalog.Object), nil
	case "database", "":
		if d.db == nil {
			return nil, errors.New("catalog source database requires a database connection")
		}
		return catalog.NewDBCatalog(d.db), nil
	default:
		return nil, fmt.Errorf("unknown catalog source: %s", d.cfg.Catalog.Source)
	}
}

// catalogCache wraps the catalog source in the normalized index cache.
func (d *deps) catalogCache() (*reconcile.CatalogCache, error) {
	c, err := d.catalog()
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(d.cfg.Catalog.CacheTTLSeconds) * time.Second
	return reconcile.NewCatalogCache(c, ttl), nil
}

// durableStore opens the configured mapping backend without the cache.
func (d *deps) durableStore() (reconcile.MappingStore, error) {
	switch d.cfg.Mappings.Backend {
	case "badger":
		store, err := mappings.OpenBadger(d.cfg.Mappings.BadgerPath)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, store.Close)
		return store, nil
	case "database", "":
		if d.db == nil {
			return nil, errors.New("mapping backend database requires a database connection")
		}
		return mappings.NewGormStore(d.db), nil
	default:
		return nil, fmt.Errorf("unknown mapping backend: %s", d.cfg.Mappings.Backend)
	}
}

// mappingStore opens the durable backend and fronts it with Redis when configured.
func (d *deps) mappingStore() (reconcile.MappingStore, error) {
	store, err := d.durableStore()
	if err != nil {
		return nil, err
	}
	if d.redis == nil {
		return store, nil
	}
	return mappings.NewCachedStore(store, d.redis, d.cfg.Cache.Prefix, d.cfg.Cache.TTL(), d.logger), nil
}

// lister returns the mapping store as a lister.
func (d *deps) lister() (reconcile.MappingLister, error) {
	store, err := d.durableStore()
	if err != nil {
		return nil, err
	}
	l, ok := store.(reconcile.MappingLister)
	if !ok {
		return nil, errors.New("mapping backend cannot list mappings")
	}
	return l, nil
}

// Close releases the opened resources.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.logger.Warn("Failed to close resource", zap.Error(err))
		}
	}
	if d.db != nil {
		if sqlDB, err := d.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = d.logger.Sync()
}
