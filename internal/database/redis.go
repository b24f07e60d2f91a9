// Package database builds the redis client used as the terminal client's
// durable credential backing.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prudhvinik1/grftalk/internal/logging"
	"github.com/redis/go-redis/v9"
)

const clientName = "grftalk"

// NewRedisClient connects to redisURL and pings it. The client is closed
// again if the ping fails.
func NewRedisClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	logger = logging.OrDefault(logger)

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}
	if opts.ClientName == "" {
		opts.ClientName = clientName
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error pinging redis at %s: %w", opts.Addr, err)
	}

	logger.Info("redis client created", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}
