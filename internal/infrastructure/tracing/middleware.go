package tracing

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/id"
)

// HTTPMiddleware opens a span per request. An incoming X-Trace-ID is
// continued so panel actions can be correlated across retries.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if traceID := c.GetHeader(TraceHeader); validHeader(traceID) {
			ctx = context.WithValue(ctx, traceIDKey, id.TraceID(traceID))
		}
		if parentID := c.GetHeader(SpanHeader); validHeader(parentID) {
			ctx = context.WithValue(ctx, spanIDKey, id.SpanID(parentID))
		}

		operation := c.FullPath()
		if operation == "" {
			operation = "unmatched"
		}
		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+operation)
		if name := c.Param("name"); name != "" {
			span.SetTag("container", name)
		}
		if repo := c.Param("id"); repo != "" {
			span.SetTag("target", repo)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Header(TraceHeader, span.TraceID.String())
		c.Header(SpanHeader, span.SpanID.String())

		c.Next()

		span.SetStatus(c.Writer.Status())
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}
		span.Finish()
		tracer.Submit(span)
	}
}

// validHeader accepts caller-supplied ids that are safe to log
func validHeader(v string) bool {
	if v == "" || len(v) > 128 {
		return false
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
