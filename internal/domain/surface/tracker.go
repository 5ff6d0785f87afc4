package surface

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/openedfiles/internal/domain/codec"
	"github.com/GriffinCanCode/openedfiles/internal/shared/id"
)

// Tracker maps host surface keys to observers.
//
// Callbacks are ignored until Install and after Uninstall. The sink is
// always called with the tracker lock released.
type Tracker struct {
	mu        sync.Mutex
	installed bool
	observers map[string]*Observer // Protected by mu

	sink     Sink
	codec    *codec.Codec
	logger   *zap.Logger
	recorder CaptureRecorder
}

// NewTracker creates an uninstalled tracker
func NewTracker(sink Sink, c *codec.Codec, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		observers: make(map[string]*Observer),
		sink:      sink,
		codec:     c,
		logger:    logger.Named("surface"),
	}
}

// WithRecorder adds capture outcome recording
func (t *Tracker) WithRecorder(rec CaptureRecorder) *Tracker {
	t.recorder = rec
	return t
}

// Install starts accepting host callbacks
func (t *Tracker) Install() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.installed = true
}

// Uninstall stops accepting host callbacks and forgets every observer
// without capturing.
func (t *Tracker) Uninstall() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.installed = false
	t.observers = make(map[string]*Observer)
}

// Installed reports whether the tracker accepts callbacks
func (t *Tracker) Installed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.installed
}

// Created attaches an observer to a surface the host just instantiated.
// A key that is still tracked is destroyed first.
func (t *Tracker) Created(key string, s codec.Surface) (id.SurfaceID, bool) {
	t.mu.Lock()
	if !t.installed {
		t.mu.Unlock()
		return "", false
	}
	previous := t.observers[key]
	o := newObserver(t.sink, t.codec, s, t.logger, t.recorder, id.NewSurfaceID())
	t.observers[key] = o
	t.mu.Unlock()

	if previous != nil {
		t.logger.Debug("surface key reused", zap.String("key", key))
		previous.Destroy()
	}

	t.logger.Debug("surface created",
		zap.String("key", key),
		zap.String("handle", o.handle.String()))
	o.register()
	return o.handle, true
}

// Destroyed tears down the observer for key. Unknown keys are ignored.
func (t *Tracker) Destroyed(key string) bool {
	t.mu.Lock()
	o, ok := t.observers[key]
	if ok {
		delete(t.observers, key)
	}
	installed := t.installed
	t.mu.Unlock()

	if !installed || !ok {
		return false
	}

	t.logger.Debug("surface destroyed",
		zap.String("key", key),
		zap.String("handle", o.handle.String()))
	o.Destroy()
	return true
}

// DestroyAll tears down every tracked surface
func (t *Tracker) DestroyAll() int {
	t.mu.Lock()
	observers := t.observers
	t.observers = make(map[string]*Observer)
	t.mu.Unlock()

	for _, o := range observers {
		o.Destroy()
	}
	return len(observers)
}

// Handle resolves a host key to its surface handle
func (t *Tracker) Handle(key string) (id.SurfaceID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.observers[key]
	if !ok {
		return "", false
	}
	return o.handle, true
}

// Surface resolves a host key to its surface
func (t *Tracker) Surface(key string) (codec.Surface, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.observers[key]
	if !ok {
		return nil, false
	}
	return o.surface, true
}

// Len returns the number of tracked surfaces
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.observers)
}
