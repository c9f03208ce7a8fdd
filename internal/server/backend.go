package server

import (
	"context"
	"fmt"
	"log"

	"taskdesk/internal/config"
	"taskdesk/internal/handler"
	"taskdesk/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenProvider connects the configured backend and probes it once.
func OpenProvider(ctx context.Context, cfg *config.Config) (repository.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.BackendTimeout)
	defer cancel()

	if cfg.Backend == config.BackendMemory {
		log.Println("✅ Using in-memory session stores")
		return repository.NewSessionProvider(cfg.SessionTTL), nil
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to open %s backend: %w (%s)", cfg.Backend, err, handler.BackendHint(cfg.Backend))
	}
	if err := store.Probe(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("❌ %s backend unreachable: %w (%s)", cfg.Backend, err, handler.BackendHint(cfg.Backend))
	}
	log.Printf("✅ Connected to %s backend", cfg.Backend)

	return repository.NewSharedProvider(store), nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.TaskStore, error) {
	switch cfg.Backend {
	case config.BackendKV:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return repository.NewRedisRepository(client, cfg.RedisPrefix), nil

	case config.BackendBlob:
		repo, err := repository.NewBlobRepository(ctx, cfg.NATSURL, cfg.BlobBucket, cfg.BlobObject)
		if err != nil {
			return nil, err
		}
		return repo, nil

	case config.BackendSQL:
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		repo := repository.NewTaskRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close()
			return nil, err
		}
		return repo, nil

	case config.BackendMongo:
		repo, err := repository.NewMongoRepository(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.PostgresDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrBackendUnavailable, err)
	}
	return db, nil
}
