package main

import (
	"context"
	"flag"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"restrpc/example/calculator"
	"restrpc/observability/opentelemetry"
	"restrpc/rpc"
	"restrpc/rpc/compress/gzip"
)

var endpoint = flag.String("endpoint", "http://localhost:8080/", "the calculator endpoint")

func main() {
	flag.Parse()

	c := &calculator.Calculator{}
	err := rpc.InitClientProxy(*endpoint, c,
		rpc.ClientWithTimeout(3*time.Second),
		rpc.ClientWithCompressor(gzip.Compressor{}),
		rpc.ClientWithMiddlewares(opentelemetry.NewClientMiddlewareBuilder(nil, nil).Build()))
	logx.Must(err)

	ctx := context.Background()
	res, err := c.Add(ctx, 5)
	logx.Must(err)
	logx.Infof("add(5) = %d", res)

	res, err = c.AddPair(ctx, 5, 7)
	logx.Must(err)
	logx.Infof("add(5, 7) = %d", res)

	res, err = c.AddAll(ctx, 1, 2, 3, 4, 5)
	logx.Must(err)
	logx.Infof("add(1, 2, 3, 4, 5) = %d", res)

	m, err := c.Test(ctx, map[string]any{"a": 123, "b": nil})
	logx.Must(err)
	logx.Infof("test = %v", m)

	if _, err = c.Divide(ctx, 1, 0); err != nil {
		logx.Infof("divide(1, 0) failed as expected: %v", err)
	}

	greeting, err := c.Greet(ctx, wrapperspb.String("tom"))
	logx.Must(err)
	logx.Info(greeting.GetValue())

	logx.Must(c.Reset(ctx))
}
