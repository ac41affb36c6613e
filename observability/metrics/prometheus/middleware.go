package prometheus

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"restrpc/observability"
	"restrpc/rpc"
	"restrpc/rpc/message"
)

// MiddlewareBuilder records latency, errors and in-flight calls per
// signature. The same middleware works on the client and the server.
type MiddlewareBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string

	// Kind is a const label, "server" by default
	Kind string
	// Port is appended to the outbound address label
	Port string
	// Registerer defaults to prometheus.DefaultRegisterer
	Registerer prometheus.Registerer
}

func (b *MiddlewareBuilder) Build() rpc.Middleware {
	address := observability.GetOutboundIP()
	if b.Port != "" {
		address = address + ":" + b.Port
	}
	kind := b.Kind
	if kind == "" {
		kind = "server"
	}
	constLabels := map[string]string{
		"address": address,
		"kind":    kind,
	}
	summaryVec := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:   b.Namespace,
		Subsystem:   b.Subsystem,
		Help:        b.Help,
		Name:        b.Name + "_response",
		ConstLabels: constLabels,
		Objectives: map[float64]float64{
			0.5:   0.01,
			0.75:  0.01,
			0.9:   0.01,
			0.99:  0.001,
			0.999: 0.0001,
		},
	}, []string{"signature"})
	errCntVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   b.Namespace,
		Subsystem:   b.Subsystem,
		Name:        b.Name + "_error_cnt",
		Help:        b.Help,
		ConstLabels: constLabels,
	}, []string{"signature", "error_kind"})
	reqCntVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   b.Namespace,
		Subsystem:   b.Subsystem,
		Name:        b.Name + "_active_req_cnt",
		Help:        b.Help,
		ConstLabels: constLabels,
	}, []string{"signature"})
	reg := b.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(summaryVec, errCntVec, reqCntVec)

	return func(next rpc.HandleFunc) rpc.HandleFunc {
		return func(ctx context.Context, req *message.Request) (resp *message.Response, err error) {
			reqCnt := reqCntVec.WithLabelValues(req.Signature)
			reqCnt.Inc()
			startTime := time.Now()
			defer func() {
				reqCnt.Dec()
				summaryVec.WithLabelValues(req.Signature).
					Observe(float64(time.Since(startTime).Milliseconds()))
				switch {
				case err != nil:
					errCntVec.WithLabelValues(req.Signature, string(rpc.AsError(err).Kind)).Inc()
				case resp != nil && resp.Error != nil:
					errCntVec.WithLabelValues(req.Signature, resp.Error.Kind).Inc()
				}
			}()
			resp, err = next(ctx, req)
			return
		}
	}
}
