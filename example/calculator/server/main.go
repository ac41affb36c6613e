package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"

	"restrpc/example/calculator"
	"restrpc/observability/metrics/prometheus"
	"restrpc/observability/opentelemetry"
	"restrpc/ratelimit"
	"restrpc/rpc"
)

var configFile = flag.String("f", "etc/server.yaml", "the config file")

type Config struct {
	rpc.ServerConf
	MetricsAddr string `json:",optional"`
	RateLimit   struct {
		// requests per Interval, 0 disables limiting
		Rate     int           `json:",default=0"`
		Interval time.Duration `json:",default=1s"`
		// a shared fixed window when set, a local token bucket otherwise
		Redis string `json:",optional"`
	} `json:",optional"`
}

func main() {
	flag.Parse()

	var c Config
	conf.MustLoad(*configFile, &c)

	mdls := []rpc.Middleware{
		rpc.LoggingMiddleware(),
		opentelemetry.NewServerMiddlewareBuilder(nil, nil).Build(),
		(&prometheus.MiddlewareBuilder{
			Namespace: "restrpc",
			Subsystem: "calculator",
			Name:      "server",
			Help:      "calculator server calls",
		}).Build(),
	}
	if limiter := newLimiter(c); limiter != nil {
		mdls = append(mdls, limiter.Build())
	}
	srv := rpc.MustNewServer(c.ServerConf, rpc.ServerWithMiddlewares(mdls...))
	if err := srv.RegisterService((&calculator.Service{}).Contract()); err != nil {
		logx.Must(err)
	}

	if c.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(c.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logx.Errorf("metrics server: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		if err := srv.Close(); err != nil {
			logx.Errorf("shutdown: %v", err)
		}
	}()
	logx.Infof("starting calculator server at %s", c.Addr)
	if err := srv.Start(c.Addr); err != nil {
		logx.Must(err)
	}
}

func newLimiter(c Config) ratelimit.Limiter {
	rl := c.RateLimit
	if rl.Rate <= 0 {
		return nil
	}
	if rl.Redis != "" {
		rdb := redis.NewClient(&redis.Options{Addr: rl.Redis})
		return ratelimit.NewRedisFixWindowLimiter(rdb, "restrpc-calculator", rl.Rate, rl.Interval)
	}
	return ratelimit.NewTokenBucketLimiter(rl.Rate, rl.Interval/time.Duration(rl.Rate))
}
