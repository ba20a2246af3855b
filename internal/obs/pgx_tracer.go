package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxStatementLen = 300

// PGXTracer opens one client span per statement issued through pgx.
type PGXTracer struct{}

var _ pgx.QueryTracer = PGXTracer{}

// TraceQueryStart starts the statement span and carries it on ctx.
func (PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	stmt := strings.TrimSpace(data.SQL)
	op, _, _ := strings.Cut(stmt, " ")
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.statement", clip(stmt, maxStatementLen)),
	}
	if op != "" {
		attrs = append(attrs, attribute.String("db.operation", strings.ToUpper(op)))
	}
	ctx, _ = otel.Tracer("store.postgres").Start(ctx, "pgx.query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx
}

// TraceQueryEnd closes the span opened by TraceQueryStart.
func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span := trace.SpanFromContext(ctx)
	if err := data.Err; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
	} else {
		span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	}
	span.End()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
