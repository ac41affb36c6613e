package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"restrpc/rpc"
	"restrpc/rpc/message"
)

var _ Limiter = (*TokenBucketLimiter)(nil)

// TokenBucketLimiter produces one token every interval and holds at most
// capacity of them.
type TokenBucketLimiter struct {
	limiter  *rate.Limiter
	onReject rejectStrategy
	// wait for a token instead of rejecting
	wait bool
}

func NewTokenBucketLimiter(capacity int, interval time.Duration) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		limiter:  rate.NewLimiter(rate.Every(interval), capacity),
		onReject: defaultRejection,
	}
}

func (l *TokenBucketLimiter) OnReject(onReject rejectStrategy) *TokenBucketLimiter {
	l.onReject = onReject
	return l
}

// Wait blocks callers until a token is available or their context ends.
func (l *TokenBucketLimiter) Wait() *TokenBucketLimiter {
	l.wait = true
	return l
}

func (l *TokenBucketLimiter) Build() rpc.Middleware {
	return func(next rpc.HandleFunc) rpc.HandleFunc {
		return func(ctx context.Context, req *message.Request) (*message.Response, error) {
			if l.wait {
				if err := l.limiter.Wait(ctx); err != nil {
					return l.onReject(ctx, req, next)
				}
				return next(ctx, req)
			}
			if !l.limiter.Allow() {
				return l.onReject(ctx, req, next)
			}
			return next(ctx, req)
		}
	}
}
