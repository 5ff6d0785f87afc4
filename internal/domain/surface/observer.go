package surface

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/openedfiles/internal/domain/codec"
	"github.com/GriffinCanCode/openedfiles/internal/shared/id"
)

// Sink receives surface lifecycle notifications
type Sink interface {
	RegisterSurface(handle id.SurfaceID)
	UnregisterSurface(handle id.SurfaceID, snap *codec.Snapshot)
}

// CaptureRecorder records capture outcomes
type CaptureRecorder interface {
	RecordCapture(result string)
}

// Capture outcomes
const (
	CaptureOK      = "ok"
	CapturePartial = "partial"
	CaptureFailed  = "failed"
)

// Observer follows one editing surface from creation to destruction.
type Observer struct {
	handle   id.SurfaceID
	surface  codec.Surface
	sink     Sink
	codec    *codec.Codec
	logger   *zap.Logger
	recorder CaptureRecorder
	once     sync.Once
}

// Attach creates an observer for s and registers its handle with sink.
func Attach(sink Sink, c *codec.Codec, s codec.Surface, logger *zap.Logger) *Observer {
	o := newObserver(sink, c, s, logger, nil, id.NewSurfaceID())
	o.register()
	return o
}

func newObserver(sink Sink, c *codec.Codec, s codec.Surface, logger *zap.Logger, rec CaptureRecorder, handle id.SurfaceID) *Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Observer{
		handle:   handle,
		surface:  s,
		sink:     sink,
		codec:    c,
		logger:   logger,
		recorder: rec,
	}
}

// Handle returns the surface handle
func (o *Observer) Handle() id.SurfaceID {
	return o.handle
}

// Surface returns the observed surface
func (o *Observer) Surface() codec.Surface {
	return o.surface
}

func (o *Observer) register() {
	if o.sink != nil {
		o.sink.RegisterSurface(o.handle)
	}
}

// Destroy captures the surface state and reports the teardown to the sink.
// Only the first call has an effect. Destroy never panics.
func (o *Observer) Destroy() {
	o.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("surface teardown panicked",
					zap.String("handle", o.handle.String()),
					zap.Any("panic", r))
			}
		}()

		snap := o.capture()
		if o.sink != nil {
			o.sink.UnregisterSurface(o.handle, snap)
		}
	})
}

func (o *Observer) capture() *codec.Snapshot {
	if o.codec == nil {
		return nil
	}

	snap, err := o.codec.Capture(o.surface)
	switch {
	case err == nil:
		o.record(CaptureOK)
		return &snap
	case errors.Is(err, codec.ErrHistoryUnavailable):
		o.logger.Warn("captured surface without history",
			zap.String("handle", o.handle.String()),
			zap.Error(err))
		o.record(CapturePartial)
		return &snap
	default:
		o.logger.Warn("failed to capture surface state",
			zap.String("handle", o.handle.String()),
			zap.Error(err))
		o.record(CaptureFailed)
		return nil
	}
}

func (o *Observer) record(result string) {
	if o.recorder != nil {
		o.recorder.RecordCapture(result)
	}
}
