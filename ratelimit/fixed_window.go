package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"restrpc/rpc"
	"restrpc/rpc/message"
)

var _ Limiter = (*FixWindowLimiter)(nil)

type FixWindowLimiter struct {
	// nanoseconds
	interval int64
	// at most maxRate requests within interval
	maxRate                    int64
	cnt                        atomic.Int64
	latestWindowStartTimestamp atomic.Int64
	onReject                   rejectStrategy
}

// NewFixWindowLimiter allows maxRate requests per window of size interval.
func NewFixWindowLimiter(interval time.Duration, maxRate int64) *FixWindowLimiter {
	return &FixWindowLimiter{
		interval: interval.Nanoseconds(),
		maxRate:  maxRate,
		onReject: defaultRejection,
	}
}

func (l *FixWindowLimiter) OnReject(onReject rejectStrategy) *FixWindowLimiter {
	l.onReject = onReject
	return l
}

func (l *FixWindowLimiter) Build() rpc.Middleware {
	return func(next rpc.HandleFunc) rpc.HandleFunc {
		return func(ctx context.Context, req *message.Request) (*message.Response, error) {
			current := time.Now().UnixNano()
			window := l.latestWindowStartTimestamp.Load()
			if window+l.interval < current {
				// a failed CAS means another goroutine opened the new window
				if l.latestWindowStartTimestamp.CompareAndSwap(window, current) {
					l.cnt.Store(0)
				}
			}
			if l.cnt.Add(1) > l.maxRate {
				return l.onReject(ctx, req, next)
			}
			return next(ctx, req)
		}
	}
}
