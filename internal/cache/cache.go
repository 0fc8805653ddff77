package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"nichehunt-backend/internal/util"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProjectionCache 为读取时聚合的派生计数提供可选的 Redis 缓存。
// 规则：只缓存派生值，任何底层写入都通过删除键来失效，绝不原地自增。
// client 为 nil 时所有操作都退化为未命中，系统照常工作。
type ProjectionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr, password string) *ProjectionCache {
	if addr == "" {
		return &ProjectionCache{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &ProjectionCache{client: client, ttl: 5 * time.Minute}
}

// NewWithClient 用于测试注入
func NewWithClient(client *redis.Client) *ProjectionCache {
	return &ProjectionCache{client: client, ttl: 5 * time.Minute}
}

func (c *ProjectionCache) Enabled() bool {
	return c.client != nil
}

func (c *ProjectionCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func voteCountKey(productID int) string {
	return fmt.Sprintf("product:%d:vote_count", productID)
}

func unreadCountKey(userID int) string {
	return fmt.Sprintf("user:%d:unread_count", userID)
}

// GetVoteCount 返回缓存的投票数，未命中或未启用时第二个返回值为 false
func (c *ProjectionCache) GetVoteCount(ctx context.Context, productID int) (int, bool) {
	return c.getInt(ctx, voteCountKey(productID))
}

func (c *ProjectionCache) SetVoteCount(ctx context.Context, productID, count int) {
	c.setInt(ctx, voteCountKey(productID), count)
}

// InvalidateVoteCount 在每次投票写入后删除缓存键
func (c *ProjectionCache) InvalidateVoteCount(ctx context.Context, productID int) {
	c.del(ctx, voteCountKey(productID))
}

func (c *ProjectionCache) GetUnreadCount(ctx context.Context, userID int) (int, bool) {
	return c.getInt(ctx, unreadCountKey(userID))
}

func (c *ProjectionCache) SetUnreadCount(ctx context.Context, userID, count int) {
	c.setInt(ctx, unreadCountKey(userID), count)
}

// InvalidateUnreadCount 在通知插入或标记已读后删除缓存键
func (c *ProjectionCache) InvalidateUnreadCount(ctx context.Context, userID int) {
	c.del(ctx, unreadCountKey(userID))
}

func (c *ProjectionCache) getInt(ctx context.Context, key string) (int, bool) {
	if c.client == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			util.Logger.Warn("读取缓存失败", zap.Error(err), zap.String("key", key))
		}
		return 0, false
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (c *ProjectionCache) setInt(ctx context.Context, key string, value int) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, strconv.Itoa(value), c.ttl).Err(); err != nil {
		util.Logger.Warn("写入缓存失败", zap.Error(err), zap.String("key", key))
	}
}

func (c *ProjectionCache) del(ctx context.Context, key string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		util.Logger.Warn("删除缓存键失败", zap.Error(err), zap.String("key", key))
	}
}
