package ratelimit

import (
	"context"
	"time"

	"restrpc/internal/errs"
	"restrpc/rpc"
	"restrpc/rpc/message"
)

var _ Limiter = (*LeakyBucketLimiter)(nil)

// LeakyBucketLimiter admits one call per tick. Callers queue until a tick
// or until their context ends.
type LeakyBucketLimiter struct {
	close    chan struct{}
	producer *time.Ticker
	onReject rejectStrategy
}

func NewLeakyBucketLimiter(interval time.Duration) *LeakyBucketLimiter {
	return &LeakyBucketLimiter{
		close:    make(chan struct{}),
		producer: time.NewTicker(interval),
		onReject: defaultRejection,
	}
}

func (l *LeakyBucketLimiter) OnReject(onReject rejectStrategy) *LeakyBucketLimiter {
	l.onReject = onReject
	return l
}

func (l *LeakyBucketLimiter) Build() rpc.Middleware {
	return func(next rpc.HandleFunc) rpc.HandleFunc {
		return func(ctx context.Context, req *message.Request) (*message.Response, error) {
			select {
			case <-l.close:
				return nil, rpc.NewError(rpc.KindInvocationFailed, "%v", errs.LimiterClosedError)
			default:
			}
			if ctx.Err() != nil {
				return l.onReject(ctx, req, next)
			}
			select {
			case <-ctx.Done():
				return l.onReject(ctx, req, next)
			case <-l.close:
				// a closed limiter means the server is going away
				return nil, rpc.NewError(rpc.KindInvocationFailed, "%v", errs.LimiterClosedError)
			case <-l.producer.C:
				return next(ctx, req)
			}
		}
	}
}

// Close must be called once.
func (l *LeakyBucketLimiter) Close() error {
	close(l.close)
	l.producer.Stop()
	return nil
}
