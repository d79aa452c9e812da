package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rhindhaugh/Attendance-Dashboard/pkg/config"
)

// Addr returns the host:port of the configured Redis server.
func Addr(cfg config.RedisConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 6379
	}
	return net.JoinHostPort(cfg.Host, strconv.Itoa(port))
}

// Options translates configuration into client options. Timeouts are short:
// a slow cache should fall through to the engine rather than stall requests.
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         Addr(cfg),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	}
}

// NewRedis connects to the report cache and returns the client once a ping
// succeeds within ctx.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(Options(cfg))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", Addr(cfg), err)
	}
	return client, nil
}
