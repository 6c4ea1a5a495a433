/*
Package tracing gives every API request a trace id and a timed span.

The id is returned in X-Trace-ID, continued from the request header when the
panel sends one, and attached to service executions so log lines from the
package manager and container tool calls can be matched to the click that
caused them. Finished spans are written to the log by a background collector;
slow or failed requests log at warn, the rest at debug.

# Usage

	tracer := tracing.New("backend", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "catalog.refresh")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
