package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/dcode-github/realestate_console/utils"
)

const (
	maxConnectAttempts = 5
	connectTimeout     = 5 * time.Second
	initialBackoff     = 500 * time.Millisecond
)

// ConnectDB opens the Postgres pool, retrying with exponential backoff.
func ConnectDB(databaseURL string) (*pgxpool.Pool, error) {
	var (
		pool    *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxConnectAttempts; i++ {
		pool, err = newDBPool(databaseURL)
		if err == nil {
			utils.Logger.Infof("Connected to Postgres on attempt %d", i)
			return pool, nil
		}

		utils.Logger.WithError(err).Warnf(
			"Failed DB connect on attempt %d/%d. Retrying in %v...",
			i, maxConnectAttempts, backoff,
		)
		if i < maxConnectAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxConnectAttempts, err)
}

func newDBPool(databaseURL string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}

func CloseDB(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
		utils.Logger.Info("Postgres connection closed")
	}
}
