package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	onlineSetKey = "online_users"
	statusKeyFmt = "user:%s:status"
	onlineTTL    = 5 * time.Minute
	offlineTTL   = 24 * time.Hour
)

// RedisStatus mirrors presence into Redis so the REST side of the
// platform can read who is online without touching this process.
type RedisStatus struct {
	client *redis.Client
}

func NewRedisStatus(client *redis.Client) *RedisStatus {
	return &RedisStatus{client: client}
}

func (r *RedisStatus) SetOnline(ctx context.Context, userID string) error {
	key := fmt.Sprintf(statusKeyFmt, userID)
	pipe := r.client.Pipeline()
	pipe.SAdd(ctx, onlineSetKey, userID)
	pipe.HSet(ctx, key, map[string]interface{}{
		"status":     "online",
		"last_seen":  time.Now().Unix(),
		"updated_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, onlineTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set user online: %w", err)
	}
	return nil
}

func (r *RedisStatus) SetOffline(ctx context.Context, userID string) error {
	key := fmt.Sprintf(statusKeyFmt, userID)
	pipe := r.client.Pipeline()
	pipe.SRem(ctx, onlineSetKey, userID)
	pipe.HSet(ctx, key, map[string]interface{}{
		"status":     "offline",
		"last_seen":  time.Now().Unix(),
		"updated_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, offlineTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set user offline: %w", err)
	}
	return nil
}

// IsOnline reads the mirrored flag.
func (r *RedisStatus) IsOnline(ctx context.Context, userID string) (bool, error) {
	online, err := r.client.SIsMember(ctx, onlineSetKey, userID).Result()
	if err != nil {
		return false, fmt.Errorf("check user online: %w", err)
	}
	return online, nil
}
