package log

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type requestID struct{}

func RequestIDFromContext(c context.Context) string {
	id, ok := c.Value(requestID{}).(string)
	if !ok {
		return ""
	}
	return id
}

func AttachRequestIDToContext(c context.Context, id string) context.Context {
	return context.WithValue(c, requestID{}, id)
}

// AttachTraceIdFromContext adds the request id and, when a span is recording,
// the trace and span ids of the event context to every log line.
func AttachTraceIdFromContext() zerolog.HookFunc {
	return func(e *zerolog.Event, level zerolog.Level, message string) {
		c := e.GetCtx()
		if c == nil {
			return
		}

		if reqID := RequestIDFromContext(c); reqID != "" {
			e.Str(KeyRequestID, reqID)
		}

		spanCtx := trace.SpanContextFromContext(c)
		if spanCtx.IsValid() {
			e.Str(KeyTraceID, spanCtx.TraceID().String()).
				Str(KeySpanID, spanCtx.SpanID().String())
		}
	}
}
