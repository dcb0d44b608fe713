// Package telemetry wraps a single CLI invocation in one tracer span,
// grounded on pkg/sdk/telemetry/operation.go's EmitPlan/RunStep pattern:
// an operation-level span opened at the top of a command and closed with
// its error recorded, rather than a span per internal engine call.
package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartOperation opens a span named operation under tracer and returns a
// context carrying it plus a func to close it out, recording err on the
// span if non-nil. Safe to call with a nil tracer: it then behaves as a
// no-op around ctx.
func StartOperation(ctx context.Context, tracer trace.Tracer, operation string) (context.Context, func(error)) {
	if tracer == nil {
		return ctx, func(error) {}
	}
	spanCtx, span := tracer.Start(ctx, operation)
	return spanCtx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
		}
		span.End()
	}
}
