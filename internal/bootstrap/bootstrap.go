// Package bootstrap builds the dependencies shared by the server and scheduler binaries.
package bootstrap

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/feedesk/internal/backend"
	"github.com/segyhp/feedesk/internal/config"
	"github.com/segyhp/feedesk/internal/log"
	"github.com/segyhp/feedesk/internal/repository"
)

// NewLogger builds the process logger from LOG_LEVEL and the resolved log format
func NewLogger(cfg *config.Config, component string) *log.Logger {
	return log.New(log.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.LogFormat(),
		Component: component,
	})
}

// OpenStore picks the backend API client or a direct Postgres connection per DATA_SOURCE.
// The returned func releases whatever was opened.
func OpenStore(cfg *config.Config, logger *log.Logger) (repository.Store, func(), error) {
	if cfg.Source == config.SourcePostgres {
		db, err := OpenDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresStore(db, logger), func() { db.Close() }, nil
	}

	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Token, cfg.GetBackendTimeout(), logger)
	return client, func() {}, nil
}

func OpenDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func NewRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
