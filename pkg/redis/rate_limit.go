package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimitKeyPrefix 限流计数key前缀
const RateLimitKeyPrefix = "im:ratelimit:"

// Allow 固定窗口限流：窗口内第 limit+1 次起返回 false
func Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if client == nil {
		return false, ErrNotInitialized
	}

	fullKey := RateLimitKeyPrefix + key

	// INCR 与首次 EXPIRE 放在同一个事务管道中
	pipe := client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("限流计数失败: %w", err)
	}

	return incr.Val() <= int64(limit), nil
}
