package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis はRedisのINCR/EXPIREでカウントするLimiter。
// 複数のアーケードサーバーで同じ制限を共有する場合に使用する。
type Redis struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedis はRedisに接続し、疎通を確認したLimiterを返す。
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redisへの接続に失敗: %w", err)
	}

	return &Redis{
		client:  client,
		prefix:  "arcade:ratelimit:",
		timeout: 250 * time.Millisecond,
	}, nil
}

// Allow はkeyのリクエストを許可するか判定する。
// Redisが応答しない場合は許可する（レート制限のためにリクエストを失敗させない）。
func (r *Redis) Allow(ctx context.Context, key string, limit int, d time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if d <= 0 {
		d = time.Minute
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	redisKey := r.prefix + key
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		log.Printf("レート制限カウンタの更新に失敗: op=incr, error=%v", err)
		return Decision{Allowed: true}
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, d).Err(); err != nil {
			log.Printf("レート制限カウンタの更新に失敗: op=expire, error=%v", err)
		}
	}

	ttl, err := r.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = d
	}
	return Decision{
		Allowed: int(count) <= limit,
		Count:   int(count),
		ResetAt: time.Now().Add(ttl),
	}
}

// Close はRedis接続を閉じる。
func (r *Redis) Close() error {
	return r.client.Close()
}
