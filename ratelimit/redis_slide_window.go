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

//go:embed lua/slide_window.lua
var luaSlideWindow string

var _ Limiter = (*RedisSlideWindowLimiter)(nil)

type RedisSlideWindowLimiter struct {
	client redis.Cmdable
	key    string
	// requests allowed within the window
	maxRate int
	// milliseconds
	interval int64
	onReject rejectStrategy
}

func NewRedisSlideWindowLimiter(client redis.Cmdable, key string, maxRate int, interval time.Duration) *RedisSlideWindowLimiter {
	return &RedisSlideWindowLimiter{
		client:   client,
		key:      key,
		maxRate:  maxRate,
		interval: interval.Milliseconds(),
		onReject: defaultRejection,
	}
}

func (l *RedisSlideWindowLimiter) OnReject(onReject rejectStrategy) *RedisSlideWindowLimiter {
	l.onReject = onReject
	return l
}

func (l *RedisSlideWindowLimiter) Build() rpc.Middleware {
	return func(next rpc.HandleFunc) rpc.HandleFunc {
		return func(ctx context.Context, req *message.Request) (*message.Response, error) {
			limit, err := l.limit(ctx)
			if err != nil {
				logx.WithContext(ctx).Errorf("ratelimit: slide window %s: %v", l.key, err)
				return next(ctx, req)
			}
			if limit {
				return l.onReject(ctx, req, next)
			}
			return next(ctx, req)
		}
	}
}

func (l *RedisSlideWindowLimiter) limit(ctx context.Context) (bool, error) {
	now := time.Now()
	return l.client.Eval(ctx, luaSlideWindow, []string{l.key}, l.maxRate, l.interval, now.UnixMilli()).Bool()
}
