/*
Package tracing gives every REST request and host message a trace ID and
logs its duration.

Spans are collected on a buffered channel and written by one goroutine,
so a slow log sink never blocks a handler. A full buffer drops spans.

Example Usage:

	tracer := tracing.New(logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "file-open")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

Clients may send X-Trace-ID to join an existing trace; the ID in use is
always echoed back in the response header.
*/
package tracing
