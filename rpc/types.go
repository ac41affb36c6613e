package rpc

import (
	"context"

	"restrpc/rpc/message"
)

// Proxy sends one invocation request and returns its response.
type Proxy interface {
	Invoke(ctx context.Context, request *message.Request) (*message.Response, error)
}

// HandleFunc is the shape shared by the client exchange and the server dispatch.
type HandleFunc func(ctx context.Context, req *message.Request) (*message.Response, error)

// Middleware wraps a HandleFunc.
type Middleware func(next HandleFunc) HandleFunc

// Chain composes middlewares so that Chain(A, B)(h) runs A, then B, then h.
func Chain(mdls ...Middleware) Middleware {
	return func(next HandleFunc) HandleFunc {
		for i := len(mdls) - 1; i >= 0; i-- {
			next = mdls[i](next)
		}
		return next
	}
}
