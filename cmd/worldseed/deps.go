package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/worldseed/internal/config"
	"github.com/cory-johannsen/worldseed/internal/importer"
	"github.com/cory-johannsen/worldseed/internal/observability"
	"github.com/cory-johannsen/worldseed/internal/pack"
	"github.com/cory-johannsen/worldseed/internal/storage/postgres"
	"github.com/cory-johannsen/worldseed/internal/world"
	"github.com/cory-johannsen/worldseed/internal/world/memworld"
)

// host is a world store that also keeps settings and a run log.
type host interface {
	world.Store
	world.Settings
	world.RunLog
}

// Deps holds what every command needs.
type Deps struct {
	Config      config.Config
	Logger      *zap.Logger
	World       host
	Content     importer.Content
	Initializer *importer.Initializer
}

// withDeps loads config, opens the selected world and builds the
// initializer, then calls fn. Resources are released when fn returns.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logging, observability.WorldFields(cfg.World)...)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	w, closeWorld, err := openWorld(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeWorld()

	content := contentFromConfig(cfg.World)
	pipeline := importer.NewPipeline(w, importer.Options{
		Module:               cfg.World.Module,
		Profile:              profileFromConfig(cfg.World.Profile),
		ThumbnailConcurrency: cfg.World.ThumbnailConcurrency,
	}, logger)

	return fn(&Deps{
		Config:      cfg,
		Logger:      logger,
		World:       w,
		Content:     content,
		Initializer: importer.NewInitializer(pipeline, w, w, content, logger),
	})
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(globalConfig)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	if globalStore != "" {
		cfg.World.Store = globalStore
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

const healthTimeout = 5 * time.Second

// openWorld returns the configured world host and a release func. The
// memory store starts empty on every invocation and is useful as a dry run.
func openWorld(ctx context.Context, cfg config.Config, logger *zap.Logger) (host, func(), error) {
	switch cfg.World.Store {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := pool.Health(ctx, healthTimeout); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("database health check: %w", err)
		}
		logger.Debug("database connected",
			zap.String("host", cfg.Database.Host),
			zap.String("name", cfg.Database.Name),
		)
		return postgres.NewWorld(pool, cfg.World.ThumbnailDir), pool.Close, nil
	default:
		logger.Debug("using in-memory world")
		return memworld.New(), func() {}, nil
	}
}

func contentFromConfig(w config.WorldConfig) importer.Content {
	names := w.PackNames()
	return importer.Content{
		Manifest: pack.ManifestFile{Path: w.Manifest},
		Journals: pack.NewFile(w.PacksDir, names.Journals, world.JournalEntry, false),
		Actors:   pack.NewFile(w.PacksDir, names.Actors, world.Actor, false),
		Items:    pack.NewFile(w.PacksDir, names.Items, world.Item, true),
		Scenes:   pack.NewFile(w.PacksDir, names.Scenes, world.Scene, false),
	}
}

// profileFromConfig maps a profile name to placement rules. The flags profile
// has no rules, so documents are placed only by their folder flag.
func profileFromConfig(name string) importer.Profile {
	if name == config.ProfileHarmsWay {
		return importer.HarmsWayProfile()
	}
	return importer.Profile{}
}
