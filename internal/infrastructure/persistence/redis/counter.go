// Package redis implements the opt-in Redis backing for the daily
// counter. A Redis hash keeps the same-day tally across process
// restarts, which the default in-memory counter cannot do; the counter
// remains a cache either way and the ledger stays authoritative.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/solvecircle/dailyproof/internal/domain/member"
	"github.com/solvecircle/dailyproof/internal/domain/submission"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ErrConnection is returned when the Redis connection fails.
var ErrConnection = errors.New("redis: connection failed")

// counterKey is the hash holding handle -> same-day count. One flat hash
// is enough: the reminder reset deletes the whole key, so stale days
// cannot accumulate.
const counterKey = "dailyproof:counter"

// ══════════════════════════════════════════════════════════════════════════════
// COUNTER
// ══════════════════════════════════════════════════════════════════════════════

// Counter implements submission.DailyCounter on Redis.
type Counter struct {
	client *redis.Client
}

var _ submission.DailyCounter = (*Counter)(nil)

// NewCounter connects to Redis and verifies the connection.
func NewCounter(ctx context.Context, cfg Config) (*Counter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return &Counter{client: client}, nil
}

// Close closes the Redis connection.
func (c *Counter) Close() error {
	return c.client.Close()
}

// Increment adds one to the handle's tally and returns the new total.
func (c *Counter) Increment(ctx context.Context, handle member.Handle) (int, error) {
	n, err := c.client.HIncrBy(ctx, counterKey, handle.String(), 1).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: failed to increment counter: %w", err)
	}
	return int(n), nil
}

// Get returns the handle's tally, 0 if absent.
func (c *Counter) Get(ctx context.Context, handle member.Handle) (int, error) {
	n, err := c.client.HGet(ctx, counterKey, handle.String()).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis: failed to read counter: %w", err)
	}
	return n, nil
}

// Submitted returns the set of handles with a non-zero tally.
func (c *Counter) Submitted(ctx context.Context) (map[member.Handle]struct{}, error) {
	entries, err := c.client.HGetAll(ctx, counterKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to read counter set: %w", err)
	}

	out := make(map[member.Handle]struct{}, len(entries))
	for handle, raw := range entries {
		if raw != "0" && raw != "" {
			out[member.Handle(handle)] = struct{}{}
		}
	}
	return out, nil
}

// ResetAll clears every entry by deleting the hash.
func (c *Counter) ResetAll(ctx context.Context) error {
	if err := c.client.Del(ctx, counterKey).Err(); err != nil {
		return fmt.Errorf("redis: failed to reset counter: %w", err)
	}
	return nil
}
