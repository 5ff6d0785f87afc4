package tracing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/openedfiles/internal/shared/id"
)

const spanBuffer = 1000

// TraceID identifies one request or host message across log lines
type TraceID string

// Span is one timed operation
type Span struct {
	TraceID   TraceID
	Name      string
	StartTime time.Time
	Duration  time.Duration
	Tags      map[string]string
	Status    int
	Err       error
}

// SetTag adds a tag to the span
func (s *Span) SetTag(key, value string) {
	s.Tags[key] = value
}

// SetError records an error in the span
func (s *Span) SetError(err error) {
	s.Err = err
	if s.Status < 400 {
		s.Status = 500
	}
}

// Finish stops the span clock
func (s *Span) Finish() {
	s.Duration = time.Since(s.StartTime)
}

// Tracer collects finished spans and writes them to the log off the
// request path.
type Tracer struct {
	logger *zap.Logger
	spans  chan *Span
	done   chan struct{}
	once   sync.Once
}

// New creates a tracer and starts its collector
func New(logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{
		logger: logger.Named("trace"),
		spans:  make(chan *Span, spanBuffer),
		done:   make(chan struct{}),
	}
	go t.collect()
	return t
}

// StartSpan opens a span, reusing the trace ID already in ctx if any
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = TraceID(id.NewTraceID())
		ctx = WithTraceID(ctx, traceID)
	}
	span := &Span{
		TraceID:   traceID,
		Name:      name,
		StartTime: time.Now(),
		Tags:      make(map[string]string),
	}
	return span, ctx
}

// Submit hands a finished span to the collector. Spans are dropped when
// the buffer is full or the tracer is closed.
func (t *Tracer) Submit(span *Span) {
	if t == nil {
		return
	}
	select {
	case <-t.done:
		return
	default:
	}
	select {
	case t.spans <- span:
	default:
		t.logger.Warn("span buffer full, dropping span", zap.String("trace_id", string(span.TraceID)))
	}
}

// Close stops the collector
func (t *Tracer) Close() {
	t.once.Do(func() { close(t.done) })
}

func (t *Tracer) collect() {
	for {
		select {
		case span := <-t.spans:
			t.write(span)
		case <-t.done:
			return
		}
	}
}

func (t *Tracer) write(span *Span) {
	fields := make([]zap.Field, 0, 4+len(span.Tags))
	fields = append(fields,
		zap.String("trace_id", string(span.TraceID)),
		zap.String("operation", span.Name),
		zap.Duration("duration", span.Duration),
	)
	if span.Status != 0 {
		fields = append(fields, zap.Int("status", span.Status))
	}
	for k, v := range span.Tags {
		fields = append(fields, zap.String(k, v))
	}

	if span.Err != nil {
		t.logger.Warn("span failed", append(fields, zap.Error(span.Err))...)
		return
	}
	t.logger.Debug("span completed", fields...)
}

type contextKey struct{}

// WithTraceID stores traceID in ctx
func WithTraceID(ctx context.Context, traceID TraceID) context.Context {
	return context.WithValue(ctx, contextKey{}, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) TraceID {
	traceID, _ := ctx.Value(contextKey{}).(TraceID)
	return traceID
}
