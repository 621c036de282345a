package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// unreadCountTTL keeps polling endpoints cheap without serving counts that
// lag a status change by more than one poll interval.
const unreadCountTTL = 30 * time.Second

// RedisCache caches per-user unread notification counts. All methods are
// best-effort; a cache failure must never fail the request.
type RedisCache struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisCache(addr, password string, db int, log *zap.Logger) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("redis connected", zap.String("addr", addr))

	return &RedisCache{client: rdb, log: log}, nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func unreadCountKey(userID uuid.UUID) string {
	return fmt.Sprintf("notification_count_user_%s", userID)
}

// UnreadCount returns the cached count and whether one was present
func (r *RedisCache) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, bool) {
	count, err := r.client.Get(ctx, unreadCountKey(userID)).Int64()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn("unread count cache read failed", zap.Error(err))
		}
		return 0, false
	}
	return count, true
}

func (r *RedisCache) SetUnreadCount(ctx context.Context, userID uuid.UUID, count int64) {
	if err := r.client.Set(ctx, unreadCountKey(userID), count, unreadCountTTL).Err(); err != nil {
		r.log.Warn("unread count cache write failed", zap.Error(err))
	}
}

// ForgetUnreadCount drops the cached count after a write that changes it
func (r *RedisCache) ForgetUnreadCount(ctx context.Context, userID uuid.UUID) {
	if err := r.client.Del(ctx, unreadCountKey(userID)).Err(); err != nil {
		r.log.Warn("unread count cache invalidation failed", zap.Error(err))
	}
}
