package ratelimit

import (
	"context"
	_ "embed"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/zeromicro/go-zero/core/logx"

	"restrpc/rpc"
	"restrpc/rpc/message"
)

//go:embed lua/fix_window.lua
var luaFixWindow string

var _ Limiter = (*RedisFixWindowLimiter)(nil)

// RedisFixWindowLimiter shares one fixed window between every server
// using the same key.
type RedisFixWindowLimiter struct {
	client redis.Cmdable
	key    string
	// milliseconds
	interval int64
	maxRate  int
	onReject rejectStrategy
}

func NewRedisFixWindowLimiter(client redis.Cmdable, key string, maxRate int, interval time.Duration) *RedisFixWindowLimiter {
	return &RedisFixWindowLimiter{
		client:   client,
		key:      key,
		interval: interval.Milliseconds(),
		maxRate:  maxRate,
		onReject: defaultRejection,
	}
}

func (l *RedisFixWindowLimiter) OnReject(onReject rejectStrategy) *RedisFixWindowLimiter {
	l.onReject = onReject
	return l
}

func (l *RedisFixWindowLimiter) Build() rpc.Middleware {
	return func(next rpc.HandleFunc) rpc.HandleFunc {
		return func(ctx context.Context, req *message.Request) (*message.Response, error) {
			limit, err := l.limit(ctx)
			if err != nil {
				// redis is down, let the call through
				logx.WithContext(ctx).Errorf("ratelimit: fix window %s: %v", l.key, err)
				return next(ctx, req)
			}
			if limit {
				return l.onReject(ctx, req, next)
			}
			return next(ctx, req)
		}
	}
}

func (l *RedisFixWindowLimiter) limit(ctx context.Context) (bool, error) {
	return l.client.Eval(ctx, luaFixWindow, []string{l.key}, l.interval, l.maxRate).Bool()
}
