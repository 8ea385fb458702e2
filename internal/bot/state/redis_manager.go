package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladimiradmaev/glycocare/internal/config"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

const (
	stateTTL     = 24 * time.Hour
	redisTimeout = 3 * time.Second
)

// RedisManager manages user states using Redis. Keys expire after a day so
// abandoned conversations clean themselves up.
type RedisManager struct {
	client redis.UniversalClient
}

// NewRedisManager connects to Redis and verifies the connection.
func NewRedisManager(cfg config.RedisConfig) (*RedisManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		ReadTimeout:  redisTimeout,
		WriteTimeout: redisTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisManagerWithClient(client), nil
}

// NewRedisManagerWithClient wraps an existing client.
func NewRedisManagerWithClient(client redis.UniversalClient) *RedisManager {
	return &RedisManager{client: client}
}

func stateKey(userID int64) string { return fmt.Sprintf("glycocare:user:%d:state", userID) }
func tempKey(userID int64) string  { return fmt.Sprintf("glycocare:user:%d:temp", userID) }

func (m *RedisManager) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisTimeout)
}

// SetUserState sets the state for a user with TTL
func (m *RedisManager) SetUserState(userID int64, state string) {
	ctx, cancel := m.ctx()
	defer cancel()
	if err := m.client.Set(ctx, stateKey(userID), state, stateTTL).Err(); err != nil {
		logger.Warn("Failed to store bot state", "telegram_id", userID, "error", err)
	}
}

// GetUserState gets the state for a user. Errors read as None.
func (m *RedisManager) GetUserState(userID int64) string {
	ctx, cancel := m.ctx()
	defer cancel()
	val, err := m.client.Get(ctx, stateKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Failed to read bot state", "telegram_id", userID, "error", err)
		}
		return None
	}
	return val
}

// ClearUserState clears the state for a user
func (m *RedisManager) ClearUserState(userID int64) {
	ctx, cancel := m.ctx()
	defer cancel()
	m.client.Del(ctx, stateKey(userID))
}

// SetTempData stores one field of the user's temp hash and refreshes its TTL.
func (m *RedisManager) SetTempData(userID int64, key string, value string) {
	ctx, cancel := m.ctx()
	defer cancel()
	pipe := m.client.TxPipeline()
	pipe.HSet(ctx, tempKey(userID), key, value)
	pipe.Expire(ctx, tempKey(userID), stateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("Failed to store bot temp data", "telegram_id", userID, "key", key, "error", err)
	}
}

// GetTempData gets temporary data for a user
func (m *RedisManager) GetTempData(userID int64, key string) (string, bool) {
	ctx, cancel := m.ctx()
	defer cancel()
	val, err := m.client.HGet(ctx, tempKey(userID), key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// ClearTempData clears all temporary data for a user
func (m *RedisManager) ClearTempData(userID int64) {
	ctx, cancel := m.ctx()
	defer cancel()
	m.client.Del(ctx, tempKey(userID))
}

// Close closes the Redis connection
func (m *RedisManager) Close() error {
	return m.client.Close()
}
