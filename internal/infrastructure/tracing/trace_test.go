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
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := New(zap.New(core))
	t.Cleanup(tracer.Close)
	return tracer, logs
}

func TestStartSpanReusesTraceID(t *testing.T) {
	tracer, _ := observed(t)

	span, ctx := tracer.StartSpan(context.Background(), "outer")
	require.True(t, strings.HasPrefix(string(span.TraceID), "trace_"))
	assert.Equal(t, span.TraceID, GetTraceID(ctx))

	inner, _ := tracer.StartSpan(ctx, "inner")
	assert.Equal(t, span.TraceID, inner.TraceID)
}

func TestSubmitWritesSpan(t *testing.T) {
	tracer, logs := observed(t)

	span, _ := tracer.StartSpan(context.Background(), "file-open")
	span.SetTag("path", "a.md")
	span.Finish()
	tracer.Submit(span)

	failed, _ := tracer.StartSpan(context.Background(), "rename")
	failed.SetError(errors.New("boom"))
	failed.Finish()
	tracer.Submit(failed)

	require.Eventually(t, func() bool { return logs.Len() == 2 }, time.Second, 5*time.Millisecond)
	entries := logs.All()
	assert.Equal(t, "span completed", entries[0].Message)
	assert.Equal(t, "a.md", entries[0].ContextMap()["path"])
	assert.Equal(t, "span failed", entries[1].Message)
	assert.EqualValues(t, 500, entries[1].ContextMap()["status"])
}

func TestSubmitAfterClose(t *testing.T) {
	tracer, logs := observed(t)
	tracer.Close()
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	tracer.Submit(span)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, logs.Len())

	var nilTracer *Tracer
	nilTracer.Submit(span)
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := observed(t)

	var seen TraceID
	r := gin.New()
	r.Use(HTTPMiddleware(tracer))
	r.GET("/documents", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/documents", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, string(seen), w.Header().Get(HeaderTraceID))

	req := httptest.NewRequest("GET", "/documents", nil)
	req.Header.Set(HeaderTraceID, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, TraceID("abc"), seen)
	assert.Equal(t, "abc", w.Header().Get(HeaderTraceID))

	require.Eventually(t, func() bool { return logs.Len() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "/documents", logs.All()[0].ContextMap()["operation"])
	assert.Equal(t, "200", logs.All()[0].ContextMap()["http.status"])
}
