package opentelemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"restrpc/rpc"
	"restrpc/rpc/message"
)

const instrumentationName = "restrpc/observability/opentelemetry"

type ClientMiddlewareBuilder struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewClientMiddlewareBuilder falls back to the global tracer provider and
// propagator when tracer or propagator is nil.
func NewClientMiddlewareBuilder(tracer trace.Tracer, propagator propagation.TextMapPropagator) *ClientMiddlewareBuilder {
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	if propagator == nil {
		propagator = otel.GetTextMapPropagator()
	}
	return &ClientMiddlewareBuilder{tracer: tracer, propagator: propagator}
}

func (b *ClientMiddlewareBuilder) Build() rpc.Middleware {
	attrs := []attribute.KeyValue{
		semconv.RPCSystemKey.String("restrpc"),
		attribute.Key("rpc.component").String("client"),
	}
	return func(next rpc.HandleFunc) rpc.HandleFunc {
		return func(ctx context.Context, req *message.Request) (resp *message.Response, err error) {
			ctx, span := b.tracer.Start(ctx, req.Signature,
				trace.WithAttributes(attrs...),
				trace.WithAttributes(semconv.RPCMethodKey.String(req.Signature)),
				trace.WithSpanKind(trace.SpanKindClient))
			defer func() {
				endSpan(span, resp, err)
			}()
			// the trace context travels to the server as headers
			b.inject(ctx, req)
			resp, err = next(ctx, req)
			return
		}
	}
}

func (b *ClientMiddlewareBuilder) inject(ctx context.Context, req *message.Request) {
	if req.Meta == nil {
		req.Meta = make(map[string]string, 2)
	}
	b.propagator.Inject(ctx, propagation.MapCarrier(req.Meta))
}

func endSpan(span trace.Span, resp *message.Response, err error) {
	switch {
	case err != nil:
		span.SetAttributes(attribute.Key("rpc.error_kind").String(string(rpc.AsError(err).Kind)))
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	case resp != nil && resp.Error != nil:
		span.SetAttributes(attribute.Key("rpc.error_kind").String(resp.Error.Kind))
		span.SetStatus(codes.Error, resp.Error.Message)
	default:
		span.SetStatus(codes.Ok, "OK")
	}
	span.End()
}
