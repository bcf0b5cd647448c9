package rest

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Cowspump/some-diploma-stuff/client"

func defaultTracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(instrumentationName)
}

// startCallSpan opens the span covering every attempt of one logical call.
func startCallSpan(ctx context.Context, tracer trace.Tracer, req Request, requestID string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, req.op(), trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.Path),
		attribute.String("wellbeing.request_id", requestID),
	)
	return ctx, span
}

// endCallSpan finishes a span, recording error status if applicable.
func endCallSpan(span trace.Span, err error, attempts int) {
	span.SetAttributes(attribute.Int("wellbeing.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// injectTraceHeaders propagates W3C trace context to the backend.
func injectTraceHeaders(ctx context.Context, h http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(h))
}
