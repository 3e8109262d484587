package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 3 * time.Second

// RedisOptions configures the client. Zero durations fall back to
// defaultRedisTimeout.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	PoolSize int

	// Timeout bounds dialing and every command round trip.
	Timeout time.Duration
}

// Redis wraps the client shared by the rate limiter and health checks.
type Redis struct {
	Client  *redis.Client
	timeout time.Duration
}

// NewRedis connects and pings once within ctx.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	r := &Redis{Client: client, timeout: timeout}
	if err := r.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return r, nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}

// Ping checks availability, giving up after the command timeout even when
// ctx has no deadline.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}
