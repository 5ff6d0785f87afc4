package registry

import (
	"github.com/GriffinCanCode/openedfiles/internal/domain/codec"
	"github.com/GriffinCanCode/openedfiles/internal/shared/id"
)

// VisibleSurface is a surface the host currently shows
type VisibleSurface struct {
	Path   string
	Handle id.SurfaceID
}

// Host is the editor host as seen by the Manager.
//
// The Manager never calls a Host method while holding its lock.
type Host interface {
	// VisibleSurfaces enumerates every visible editing surface and the
	// document it shows.
	VisibleSurfaces() []VisibleSurface
	// ActiveSurface returns the surface of the focused pane, or nil.
	ActiveSurface() codec.Surface
	// ActiveDocument returns the path shown in the focused pane, or "".
	ActiveDocument() string
	// DocumentExists reports whether the host can still locate path.
	DocumentExists(path string) bool
	// ClosePanes closes every pane showing path.
	ClosePanes(path string) (int, error)
	// CloseActivePane closes the focused pane.
	CloseActivePane() error
	// OpenPane focuses or creates a pane for path.
	OpenPane(path string, split bool) error
	// Notice shows a transient message to the user.
	Notice(msg string)
}

// LimitSource provides the maximum number of tracked documents; zero or
// less means unlimited.
type LimitSource interface {
	MaxOpen() int
}

// FixedLimit is a constant LimitSource
type FixedLimit int

func (l FixedLimit) MaxOpen() int { return int(l) }
