package rpc

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"restrpc/rpc/message"
)

// LoggingMiddleware logs every call with its signature and duration.
// It works on both ends.
func LoggingMiddleware() Middleware {
	return func(next HandleFunc) HandleFunc {
		return func(ctx context.Context, req *message.Request) (*message.Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			logger := logx.WithContext(ctx).WithDuration(time.Since(start))
			switch {
			case err != nil:
				logger.Errorf("%s failed: %v", req.Signature, err)
			case resp != nil && resp.Error != nil:
				logger.Errorf("%s failed: %s", req.Signature, resp.Error)
			default:
				logger.Infof("%s", req.Signature)
			}
			return resp, err
		}
	}
}
