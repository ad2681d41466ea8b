package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mocapboston/onboarding/database"
	"github.com/mocapboston/onboarding/internal/config"
)

// Open builds the store selected by cfg.StoreDriver
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case DriverMemory:
		log.Warn().Msg("Using in-memory storage (not for production!)")
		store := NewMemoryStore()
		if cfg.SeedFile != "" {
			n, err := store.LoadSeedFile(cfg.SeedFile)
			if err != nil {
				return nil, err
			}
			log.Info().Int("sessions", n).Str("file", cfg.SeedFile).Msg("Seeded memory store")
		}
		return store, nil

	case DriverPostgres:
		db, err := database.Connect(cfg.Postgres, log)
		if err != nil {
			return nil, err
		}
		store := NewDatabaseStore(db)
		log.Info().Msg("Running database migrations...")
		if err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil

	case DriverMongo:
		log.Info().Str("database", cfg.Mongo.Database).Str("collection", cfg.SessionCollection).Msg("Connecting to MongoDB")
		return NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.SessionCollection)

	case DriverRedis:
		log.Info().Str("prefix", cfg.SessionCollection).Msg("Connecting to Redis")
		return NewRedisStore(ctx, cfg.Redis.URL, cfg.SessionCollection)
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// Describe returns a human readable backend name for health output
func Describe(driver string) string {
	switch driver {
	case DriverMemory:
		return "In-Memory (Testing)"
	case DriverPostgres:
		return "PostgreSQL Database"
	case DriverMongo:
		return "MongoDB"
	case DriverRedis:
		return "Redis"
	}
	return "Unknown"
}
