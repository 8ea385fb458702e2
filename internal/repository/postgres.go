package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vladimiradmaev/glycocare/internal/config"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

// NewPool opens the pgx pool used by the time-series store.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Time-series connection pool ready", "max_conns", pool.Config().MaxConns)
	return pool, nil
}
