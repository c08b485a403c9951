package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 会话最后一条消息预览缓存
// 写消息（发送/删除）只做失效：递增版本号并删除预览；
// 读路径回填时带上读库前看到的版本号，版本已变化则放弃写入
const (
	LastMessageKeyPrefix        = "im:last:"     // 预览缓存key前缀
	LastMessageVersionKeyPrefix = "im:last:ver:" // 预览版本号key前缀
)

// LastMessageTTL 预览缓存TTL，版本号保留两倍时长
var LastMessageTTL = 1 * time.Hour

// fillLastMessage 版本号未变化时才写入预览
var fillLastMessage = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// pairSuffix 同一会话的两个方向使用同一个后缀
// 花括号为集群hash tag，保证预览与版本号落在同一个slot，脚本可同时访问
func pairSuffix(userID1, userID2 uint) string {
	if userID1 > userID2 {
		userID1, userID2 = userID2, userID1
	}
	return fmt.Sprintf("{%d:%d}", userID1, userID2)
}

func lastMessageKey(userID1, userID2 uint) string {
	return LastMessageKeyPrefix + pairSuffix(userID1, userID2)
}

func lastMessageVersionKey(userID1, userID2 uint) string {
	return LastMessageVersionKeyPrefix + pairSuffix(userID1, userID2)
}

// GetLastMessage 获取会话最后一条消息内容
// 缓存未命中时 ok 为 false，version 为回填时需要带上的版本号
func GetLastMessage(ctx context.Context, userID1, userID2 uint) (content string, version string, ok bool, err error) {
	if client == nil {
		return "", "", false, ErrNotInitialized
	}

	pipe := client.Pipeline()
	contentCmd := pipe.Get(ctx, lastMessageKey(userID1, userID2))
	versionCmd := pipe.Get(ctx, lastMessageVersionKey(userID1, userID2))
	_, _ = pipe.Exec(ctx) // 错误逐条检查

	version, err = versionCmd.Result()
	switch {
	case errors.Is(err, redis.Nil):
		version = "0"
	case err != nil:
		return "", "", false, fmt.Errorf("获取预览版本号失败: %w", err)
	}

	content, err = contentCmd.Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", version, false, nil
	case err != nil:
		return "", "", false, fmt.Errorf("获取最后一条消息失败: %w", err)
	}
	return content, version, true, nil
}

// FillLastMessage 回填预览，version 必须是读库之前由 GetLastMessage 返回的版本号
// 期间有新消息或删除时不写入，返回 false
func FillLastMessage(ctx context.Context, userID1, userID2 uint, version, content string) (bool, error) {
	if client == nil {
		return false, ErrNotInitialized
	}

	keys := []string{lastMessageVersionKey(userID1, userID2), lastMessageKey(userID1, userID2)}
	stored, err := fillLastMessage.Run(ctx, client, keys, version, content, LastMessageTTL.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("回填最后一条消息失败: %w", err)
	}
	return stored == 1, nil
}

// InvalidateLastMessage 会话有新消息或消息被删除时调用
// 必须在数据库写入成功之后执行
func InvalidateLastMessage(ctx context.Context, userID1, userID2 uint) error {
	if client == nil {
		return ErrNotInitialized
	}

	versionKey := lastMessageVersionKey(userID1, userID2)
	pipe := client.TxPipeline()
	pipe.Incr(ctx, versionKey)
	pipe.Expire(ctx, versionKey, 2*LastMessageTTL)
	pipe.Del(ctx, lastMessageKey(userID1, userID2))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("清除消息预览缓存失败: %w", err)
	}
	return nil
}
