package observability

import (
	"context"

	contextutils "osvillage/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "osvillage"

// Span name prefixes, one per layer
const (
	areaGame     = "game"
	areaAI       = "ai"
	areaReport   = "report"
	areaHandler  = "handler"
	areaDatabase = "database"
)

// startSpan resolves the tracer on every call so a provider installed after
// package init is still used
func startSpan(ctx context.Context, area, name string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, area+"."+name, trace.WithAttributes(attrs...))
}

// TraceGameFunction starts a "game.<name>" span
func TraceGameFunction(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, areaGame, name, attrs)
}

// TraceAIFunction starts an "ai.<name>" span for the AI service and adapter
func TraceAIFunction(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, areaAI, name, attrs)
}

// TraceReportFunction starts a "report.<name>" span
func TraceReportFunction(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, areaReport, name, attrs)
}

// TraceHandlerFunction starts a "handler.<name>" span
func TraceHandlerFunction(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, areaHandler, name, attrs)
}

// TraceDatabaseFunction starts a "database.<name>" span
func TraceDatabaseFunction(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, areaDatabase, name, attrs)
}

// AttributePlayerID tags a span with the player id
func AttributePlayerID(id string) attribute.KeyValue {
	return attribute.String("player.id", id)
}

// AttributeSessionID tags a span with the game session id
func AttributeSessionID(id string) attribute.KeyValue {
	return attribute.String("session.id", id)
}

// AttributeGameType tags a span with the game type
func AttributeGameType(gameType string) attribute.KeyValue {
	return attribute.String("game.type", gameType)
}

// AttributeLevel tags a span with the player or session level
func AttributeLevel(level string) attribute.KeyValue {
	return attribute.String("game.level", level)
}

// AttributeLimit tags a span with a row limit
func AttributeLimit(limit int) attribute.KeyValue {
	return attribute.Int("query.limit", limit)
}

// FinishSpan ends span and, when *errPtr is set, marks it failed with the
// AppError code attached. Pair it with a named error return:
//
//	defer observability.FinishSpan(span, &err)
func FinishSpan(span trace.Span, errPtr *error) {
	if span == nil {
		return
	}
	defer span.End()

	if errPtr == nil || *errPtr == nil {
		return
	}
	err := *errPtr

	var appErr *contextutils.AppError
	if contextutils.AsError(err, &appErr) {
		span.SetAttributes(
			attribute.String("error.code", string(appErr.Code)),
			attribute.String("error.severity", string(appErr.Severity)),
		)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
