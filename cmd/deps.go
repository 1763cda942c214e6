package cmd

import (
	"context"
	"fmt"

	"event-sync/core/config"
	"event-sync/core/database"
	"event-sync/core/logger"
	"event-sync/core/mapping"
	"event-sync/core/remote"
	"event-sync/core/storage"
	"event-sync/feature/events"
	"event-sync/feature/events/source"

	"go.uber.org/zap"
)

// deps bundles what every command needs.
type deps struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *mapping.Store
	objects storage.Client
}

// bootstrap loads the configuration and connects the mapping store and,
// when enabled, the object storage.
func bootstrap(ctx context.Context) (*deps, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	store := mapping.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, logger: l, store: store}
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket); err != nil {
			return nil, err
		}
		d.objects = client
	}
	return d, nil
}

// importer wires the remote client and the harzinfo source.
func (d *deps) importer(ctx context.Context) (*events.Importer, error) {
	httpClient, err := remote.NewHTTPClient(ctx, d.cfg.Remote, d.store, d.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up remote auth: %w", err)
	}
	client := remote.NewClient(d.cfg.Remote, httpClient, d.logger)

	cities, err := source.LoadCities(d.cfg.Source.CitiesFile)
	if err != nil {
		return nil, err
	}

	opts := []source.Option{source.WithLogger(d.logger)}
	if d.cfg.Source.Snapshots {
		if d.objects == nil {
			return nil, fmt.Errorf("source snapshots require storage to be enabled")
		}
		opts = append(opts, source.WithSnapshots(d.objects, d.cfg.Storage.Bucket))
	}
	harzinfo, err := source.NewHarzinfo(d.cfg.Source, cities, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to set up source: %w", err)
	}
	d.logger.Info("Source ready", zap.Int("cities", len(cities)), zap.String("base_url", harzinfo.BaseURL()))

	return events.NewImporter(d.store, harzinfo, client, harzinfo.BaseURL(), d.logger), nil
}

// service wraps the importer with run serialization and report archiving.
func (d *deps) service(ctx context.Context) (*events.Service, error) {
	imp, err := d.importer(ctx)
	if err != nil {
		return nil, err
	}
	return events.NewService(imp, d.store, d.objects, d.cfg.Storage.Bucket, d.logger), nil
}
