package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/slug-shortener/internal/config"
	"github.com/MikhailRaia/slug-shortener/internal/storage"
	"github.com/MikhailRaia/slug-shortener/internal/storage/file"
	"github.com/MikhailRaia/slug-shortener/internal/storage/memory"
	"github.com/MikhailRaia/slug-shortener/internal/storage/postgres"
	"github.com/MikhailRaia/slug-shortener/internal/storage/redis"
)

// newStore picks a backend in priority order: PostgreSQL, Redis, file, memory.
// A configured backend that fails to start is an error, never a silent fallback.
func newStore(ctx context.Context, cfg *config.Config) (storage.ShortLinkStore, error) {
	switch {
	case cfg.DatabaseDSN != "":
		s, err := postgres.NewStorage(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("init postgres storage: %w", err)
		}
		log.Info().Msg("Using PostgreSQL storage")
		return s, nil
	case cfg.RedisAddr != "":
		s, err := redis.NewStorage(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("init redis storage: %w", err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis storage")
		return s, nil
	case cfg.FileStoragePath != "":
		s, err := file.NewStorage(cfg.FileStoragePath)
		if err != nil {
			return nil, fmt.Errorf("init file storage: %w", err)
		}
		log.Info().Str("path", cfg.FileStoragePath).Msg("Using file storage")
		return s, nil
	default:
		log.Info().Msg("Using in-memory storage")
		return memory.NewStorage(), nil
	}
}
