package cache

import (
	"context"
	"testing"

	"nichehunt-backend/internal/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) *ProjectionCache {
	t.Helper()
	util.Logger = zap.NewNop()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(client)
}

// TestVoteCountRoundTrip 测试投票数缓存的写入、命中与失效
func TestVoteCountRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	// 未写入时未命中
	_, ok := c.GetVoteCount(ctx, 10)
	assert.False(t, ok)

	c.SetVoteCount(ctx, 10, 42)
	count, ok := c.GetVoteCount(ctx, 10)
	assert.True(t, ok)
	assert.Equal(t, 42, count)

	// 写入后通过删除键失效
	c.InvalidateVoteCount(ctx, 10)
	_, ok = c.GetVoteCount(ctx, 10)
	assert.False(t, ok)
}

// TestUnreadCountInvalidate 测试未读数缓存失效
func TestUnreadCountInvalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.SetUnreadCount(ctx, 1, 7)
	count, ok := c.GetUnreadCount(ctx, 1)
	assert.True(t, ok)
	assert.Equal(t, 7, count)

	c.InvalidateUnreadCount(ctx, 1)
	_, ok = c.GetUnreadCount(ctx, 1)
	assert.False(t, ok)
}

// TestDisabledCache 测试未配置 Redis 时所有操作退化为未命中
func TestDisabledCache(t *testing.T) {
	c := New("", "")
	ctx := context.Background()

	assert.False(t, c.Enabled())
	assert.NoError(t, c.Ping(ctx))

	c.SetVoteCount(ctx, 10, 42)
	_, ok := c.GetVoteCount(ctx, 10)
	assert.False(t, ok)

	c.InvalidateVoteCount(ctx, 10)
}

// TestKeyIsolation 测试不同产品的键互不影响
func TestKeyIsolation(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.SetVoteCount(ctx, 1, 10)
	c.SetVoteCount(ctx, 2, 20)
	c.InvalidateVoteCount(ctx, 1)

	_, ok := c.GetVoteCount(ctx, 1)
	assert.False(t, ok)
	count, ok := c.GetVoteCount(ctx, 2)
	assert.True(t, ok)
	assert.Equal(t, 20, count)
}
