package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(t *testing.T) (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := New("backend", zap.New(core))
	t.Cleanup(tracer.Close)
	return tracer, logs
}

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer, _ := observed(t)

	root, ctx := tracer.StartSpan(context.Background(), "root")
	child, childCtx := tracer.StartSpan(ctx, "child")

	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Empty(t, root.ParentID)
	assert.Equal(t, child.SpanID, SpanID(childCtx))
	assert.True(t, strings.HasPrefix(root.TraceID.String(), "trace_"))
}

func TestSubmitWritesSpans(t *testing.T) {
	tracer, logs := observed(t)

	span, _ := tracer.StartSpan(context.Background(), "catalog.refresh")
	span.SetTag("repositories", "3")
	span.SetError(errors.New("dnf: process exited with failure (code 1)"))
	span.Finish()
	tracer.Submit(span)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("Span failed").Len() == 1
	}, time.Second, 5*time.Millisecond)

	entry := logs.FilterMessage("Span failed").All()[0]
	assert.Equal(t, "catalog.refresh", entry.ContextMap()["operation"])
	assert.Equal(t, "3", entry.ContextMap()["repositories"])
}

func TestLoggerAddsTraceID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tracer, _ := observed(t)

	_, ctx := tracer.StartSpan(context.Background(), "op")
	Logger(ctx, zap.New(core)).Info("hello")
	Logger(context.Background(), zap.New(core)).Info("bare")

	all := logs.All()
	require.Len(t, all, 2)
	assert.Equal(t, TraceID(ctx).String(), all[0].ContextMap()["trace_id"])
	assert.NotContains(t, all[1].ContextMap(), "trace_id")
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := observed(t)

	var seen string
	r := gin.New()
	r.Use(HTTPMiddleware(tracer))
	r.GET("/containers/:name/count", func(c *gin.Context) {
		seen = TraceID(c.Request.Context()).String()
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/containers/ubuntu/count", nil)
	req.Header.Set(TraceHeader, "panel-click-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "panel-click-42", seen)
	assert.Equal(t, "panel-click-42", w.Header().Get(TraceHeader))
	assert.NotEmpty(t, w.Header().Get(SpanHeader))

	require.Eventually(t, func() bool {
		return logs.FilterMessage("Span completed").Len() == 1
	}, time.Second, 5*time.Millisecond)
	fields := logs.FilterMessage("Span completed").All()[0].ContextMap()
	assert.Equal(t, "GET /containers/:name/count", fields["operation"])
	assert.Equal(t, "ubuntu", fields["container"])
}

func TestHTTPMiddlewareRejectsUnsafeHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, _ := observed(t)

	r := gin.New()
	r.Use(HTTPMiddleware(tracer))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "bad id\nforged")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.True(t, strings.HasPrefix(w.Header().Get(TraceHeader), "trace_"))
}
