package prometheus

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restrpc/rpc"
	"restrpc/rpc/message"
)

func TestMiddlewareBuilder_Build(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := &MiddlewareBuilder{
		Namespace:  "restrpc",
		Subsystem:  "calculator",
		Name:       "calls",
		Help:       "calculator calls",
		Registerer: reg,
	}
	var active float64
	mdl := b.Build()
	handler := mdl(func(ctx context.Context, req *message.Request) (*message.Response, error) {
		active = gaugeValue(t, reg, req.Signature)
		switch req.Signature {
		case "divide(int,int)":
			return nil, errors.New("divide by zero")
		case "add(string)":
			return &message.Response{Error: &message.Error{Kind: string(rpc.KindMethodNotFound)}}, nil
		}
		return &message.Response{Data: []byte(`10`)}, nil
	})

	_, err := handler(context.Background(), &message.Request{Signature: "add(int)"})
	require.NoError(t, err)
	assert.Equal(t, float64(1), active)
	assert.Equal(t, float64(0), gaugeValue(t, reg, "add(int)"))

	_, err = handler(context.Background(), &message.Request{Signature: "divide(int,int)"})
	assert.Error(t, err)
	_, err = handler(context.Background(), &message.Request{Signature: "add(string)"})
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	errs := map[string]float64{}
	summaries := 0
	for _, mf := range mfs {
		if mf.GetName() == "restrpc_calculator_calls_response" {
			summaries = len(mf.GetMetric())
		}
		if mf.GetName() != "restrpc_calculator_calls_error_cnt" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			errs[labels["signature"]+" "+labels["error_kind"]] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"divide(int,int) InvocationFailed": 1,
		"add(string) MethodNotFound":       1,
	}, errs)
	assert.Equal(t, 3, summaries)
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, signature string) float64 {
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "restrpc_calculator_calls_active_req_cnt" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "signature" && l.GetValue() == signature {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	return 0
}
