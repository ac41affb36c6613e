package opentelemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"restrpc/observability"
	"restrpc/rpc"
	"restrpc/rpc/message"
)

type ServerMiddlewareBuilder struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

func NewServerMiddlewareBuilder(tracer trace.Tracer, propagator propagation.TextMapPropagator) *ServerMiddlewareBuilder {
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	if propagator == nil {
		propagator = otel.GetTextMapPropagator()
	}
	return &ServerMiddlewareBuilder{tracer: tracer, propagator: propagator}
}

func (b *ServerMiddlewareBuilder) Build() rpc.Middleware {
	attrs := []attribute.KeyValue{
		semconv.RPCSystemKey.String("restrpc"),
		attribute.Key("rpc.component").String("server"),
		attribute.Key("address").String(observability.GetOutboundIP()),
	}
	return func(next rpc.HandleFunc) rpc.HandleFunc {
		return func(ctx context.Context, req *message.Request) (resp *message.Response, err error) {
			// continue the caller's trace when the headers carry one
			ctx = b.propagator.Extract(ctx, propagation.MapCarrier(req.Meta))
			ctx, span := b.tracer.Start(ctx, req.Signature,
				trace.WithAttributes(attrs...),
				trace.WithAttributes(semconv.RPCMethodKey.String(req.Signature)),
				trace.WithSpanKind(trace.SpanKindServer))
			defer func() {
				endSpan(span, resp, err)
			}()
			resp, err = next(ctx, req)
			return
		}
	}
}
