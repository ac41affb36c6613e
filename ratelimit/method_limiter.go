package ratelimit

import (
	"context"

	"restrpc/rpc"
	"restrpc/rpc/message"
)

var _ Limiter = (*MethodLimiter)(nil)

// MethodLimiter applies Limiter to one signature only.
type MethodLimiter struct {
	Limiter
	Signature string
}

func NewMethodLimiter(signature string, limiter Limiter) *MethodLimiter {
	return &MethodLimiter{
		Limiter:   limiter,
		Signature: signature,
	}
}

func (m *MethodLimiter) Build() rpc.Middleware {
	mdl := m.Limiter.Build()
	return func(next rpc.HandleFunc) rpc.HandleFunc {
		limited := mdl(next)
		return func(ctx context.Context, req *message.Request) (*message.Response, error) {
			if req.Signature == m.Signature {
				return limited(ctx, req)
			}
			return next(ctx, req)
		}
	}
}
