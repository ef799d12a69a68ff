// Package cache provides the Redis tier in front of the options table.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
)

const keyPrefix = "sqlflash:options:"

// Cache wraps a Redis client.
type Cache struct {
	Client *redis.Client
	ttl    time.Duration
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New connects to Redis and verifies the connection. Entries expire after ttl.
func New(ctx context.Context, url string, ttl time.Duration) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	return &Cache{Client: client, ttl: ttl}, nil
}

// Close shuts down the client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// OptionsKey is the Redis key for one user's options on one card.
func OptionsKey(userID, cardID string) string {
	return keyPrefix + userID + ":" + cardID
}

// GetOptions returns cached options, or nil on a miss.
func (c *Cache) GetOptions(ctx context.Context, userID, cardID string) ([]models.AnswerOption, error) {
	raw, err := c.Client.Get(ctx, OptionsKey(userID, cardID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get options: %w", err)
	}

	var opts []models.AnswerOption
	if err := json.Unmarshal(raw, &opts); err != nil {
		logger.FromContext(ctx).WithPrefix("cache").Warn("dropping unreadable cache entry %s: %v", OptionsKey(userID, cardID), err)
		return nil, nil
	}
	return opts, nil
}

// PutOptions stores options with the cache TTL.
func (c *Cache) PutOptions(ctx context.Context, userID, cardID string, opts []models.AnswerOption) error {
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	if err := c.Client.Set(ctx, OptionsKey(userID, cardID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set options: %w", err)
	}
	return nil
}
