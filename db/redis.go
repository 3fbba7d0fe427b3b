// db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/grantflow/config"
	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

func NewRedisClient(ctx context.Context, cfg config.RedisConfiguration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Ping(pingCtx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return client, nil
}

func CloseRedis(client *redis.Client) {
	if client != nil {
		if err := client.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

// AdminRoleCache keeps resolved admin roles keyed by email. A cached miss is
// stored as a RoleNone entry so repeated lookups for non-admins stay cheap.
type AdminRoleCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewAdminRoleCache(client redis.Cmdable, ttl time.Duration) *AdminRoleCache {
	return &AdminRoleCache{client: client, ttl: ttl}
}

func adminRoleKey(email string) string {
	return fmt.Sprintf("admin:%s", email)
}

// Get returns (nil, false, nil) on a cache miss.
func (c *AdminRoleCache) Get(ctx context.Context, email string) (*model.AdminRole, bool, error) {
	raw, err := c.client.Get(ctx, adminRoleKey(email)).Result()
	if err == redis.Nil {
		logger.Debug("Admin role not found in cache", zap.String("email", email))
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to get admin role from cache: %w", err)
	}

	var role model.AdminRole
	if err := json.Unmarshal([]byte(raw), &role); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal admin role: %w", err)
	}
	logger.Debug("Admin role retrieved from cache", zap.String("email", email))
	return &role, true, nil
}

func (c *AdminRoleCache) Set(ctx context.Context, role *model.AdminRole) error {
	roleJSON, err := json.Marshal(role)
	if err != nil {
		return fmt.Errorf("failed to marshal admin role: %w", err)
	}
	if err := c.client.Set(ctx, adminRoleKey(role.Email), roleJSON, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache admin role: %w", err)
	}
	logger.Debug("Admin role cached successfully", zap.String("email", role.Email))
	return nil
}

func (c *AdminRoleCache) Delete(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, adminRoleKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete admin role from cache: %w", err)
	}
	logger.Debug("Admin role deleted from cache", zap.String("email", email))
	return nil
}

// RateLimiter is a sliding-window limiter over a Redis sorted set.
type RateLimiter struct {
	client redis.Cmdable
}

func NewRateLimiter(client redis.Cmdable) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := r.client.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := card.Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serialises writers of one request across processes.
type RedisLocker struct {
	client redis.Cmdable
	ttl    time.Duration
	retry  time.Duration
}

func NewRedisLocker(client redis.Cmdable, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, retry: 25 * time.Millisecond}
}

// Lock blocks until the key is acquired or ctx ends.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := fmt.Sprintf("lock:%s", key)
	token := uuid.New().String()
	for {
		locked, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, grant_errors.LockWait(key, err)
		}
		logger.Debug("Lock acquisition attempt",
			zap.String("resource", key),
			zap.Bool("locked", locked))
		if locked {
			break
		}
		select {
		case <-ctx.Done():
			return nil, grant_errors.LockWait(key, ctx.Err())
		case <-time.After(l.retry):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{lockKey}, token).Err(); err != nil && err != redis.Nil {
			logger.Warn("Failed to release lock", zap.String("resource", key), zap.Error(err))
			return
		}
		logger.Debug("Lock released", zap.String("resource", key))
	}, nil
}
