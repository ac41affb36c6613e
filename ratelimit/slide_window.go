package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"

	"restrpc/rpc"
	"restrpc/rpc/message"
)

var _ Limiter = (*SlideWindowLimiter)(nil)

type SlideWindowLimiter struct {
	maxRate int
	// admission timestamps inside the window, oldest first
	queue    *list.List
	mutex    sync.Mutex
	interval time.Duration
	onReject rejectStrategy
}

func NewSlideWindowLimiter(rate int, interval time.Duration) *SlideWindowLimiter {
	return &SlideWindowLimiter{
		maxRate:  rate,
		interval: interval,
		queue:    list.New(),
		onReject: defaultRejection,
	}
}

func (l *SlideWindowLimiter) OnReject(onReject rejectStrategy) *SlideWindowLimiter {
	l.onReject = onReject
	return l
}

func (l *SlideWindowLimiter) Build() rpc.Middleware {
	return func(next rpc.HandleFunc) rpc.HandleFunc {
		return func(ctx context.Context, req *message.Request) (*message.Response, error) {
			if !l.allow(time.Now()) {
				return l.onReject(ctx, req, next)
			}
			return next(ctx, req)
		}
	}
}

func (l *SlideWindowLimiter) allow(current time.Time) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.queue.Len() < l.maxRate {
		l.queue.PushBack(current)
		return true
	}
	// slow path, drop what fell out of the window
	windowStartTime := current.Add(-l.interval)
	reqTime := l.queue.Front()
	for reqTime != nil && !reqTime.Value.(time.Time).After(windowStartTime) {
		l.queue.Remove(reqTime)
		reqTime = l.queue.Front()
	}
	if l.queue.Len() >= l.maxRate {
		return false
	}
	l.queue.PushBack(current)
	return true
}
