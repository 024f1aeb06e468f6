package repository

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"emotionquest/internal/config"
	"emotionquest/internal/database"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenRecordStore builds the record store selected by cfg.StoreBackend.
// The returned closer releases the underlying connection.
func OpenRecordStore(ctx context.Context, cfg *config.Config, logger *logrus.Entry) (RecordStore, io.Closer, error) {
	switch strings.ToLower(cfg.StoreBackend) {
	case "sql", "":
		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.RunMigrations(ctx, cfg.MigrationsPath, logger); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.WithField("database_type", cfg.DatabaseType).Info("Database connection established")
		return NewSQLRecordStore(db), db, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.WithField("redis_addr", cfg.RedisAddr).Info("Redis connection established")
		return NewRedisRecordStore(client, cfg.RedisKeyPrefix), client, nil

	case "memory":
		logger.Warn("Using in-memory record store; data is lost on restart")
		return NewMemoryRecordStore(), nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store backend: %s", cfg.StoreBackend)
	}
}
