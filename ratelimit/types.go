// Package ratelimit holds limiters that run as rpc middlewares.
package ratelimit

import (
	"context"

	"restrpc/rpc"
	"restrpc/rpc/message"
)

type Limiter interface {
	Build() rpc.Middleware
}

type rejectStrategy func(ctx context.Context, req *message.Request, next rpc.HandleFunc) (*message.Response, error)

var defaultRejection rejectStrategy = func(ctx context.Context, req *message.Request, next rpc.HandleFunc) (*message.Response, error) {
	return nil, rpc.NewError(rpc.KindRateLimited, "rate limited %s", req.Signature)
}

type limitedKey struct{}

// MarkLimitedRejection lets the call through and marks its context,
// see Limited.
var MarkLimitedRejection rejectStrategy = func(ctx context.Context, req *message.Request, next rpc.HandleFunc) (*message.Response, error) {
	ctx = context.WithValue(ctx, limitedKey{}, true)
	return next(ctx, req)
}

// Limited reports whether a limiter marked the call.
func Limited(ctx context.Context) bool {
	limited, _ := ctx.Value(limitedKey{}).(bool)
	return limited
}
