package tracing

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// HeaderTraceID carries the trace ID in both directions
const HeaderTraceID = "X-Trace-ID"

// HTTPMiddleware creates Gin middleware that opens one span per request
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if incoming := c.GetHeader(HeaderTraceID); incoming != "" && len(incoming) <= 128 {
			ctx = WithTraceID(ctx, TraceID(incoming))
		}

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		span, ctx := tracer.StartSpan(ctx, name)
		span.SetTag("http.method", c.Request.Method)

		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderTraceID, string(span.TraceID))

		c.Next()

		span.Status = c.Writer.Status()
		span.SetTag("http.status", strconv.Itoa(span.Status))
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}
		span.Finish()
		tracer.Submit(span)
	}
}
