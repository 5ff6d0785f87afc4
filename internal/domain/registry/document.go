package registry

import (
	"path"
	"strings"
	"time"

	"github.com/GriffinCanCode/openedfiles/internal/domain/codec"
	"github.com/GriffinCanCode/openedfiles/internal/shared/id"
	"github.com/GriffinCanCode/openedfiles/internal/shared/types"
)

// Metadata is the display information of a document
type Metadata struct {
	DisplayName string
	Extension   string
}

// MetadataFor derives display metadata from a slash-separated path:
// "notes/b.md" has display name "b" and extension "md".
func MetadataFor(p string) Metadata {
	base := path.Base(p)
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if name == "" {
		return Metadata{DisplayName: base}
	}
	return Metadata{
		DisplayName: name,
		Extension:   strings.TrimPrefix(ext, "."),
	}
}

// Document is one tracked document
type Document struct {
	Path         string
	DisplayName  string
	Extension    string
	LastOpenedAt time.Time
	// LiveHandle is the handle of the surface currently showing the
	// document, empty when there is none.
	LiveHandle id.SurfaceID
	// Snapshot is the editing state captured when the last surface died.
	Snapshot *codec.Snapshot
}

// Live reports whether the document has a live surface
func (d Document) Live() bool {
	return !d.LiveHandle.IsZero()
}

// Info converts the document to its API view
func (d Document) Info() types.DocumentInfo {
	info := types.DocumentInfo{
		Path:         d.Path,
		DisplayName:  d.DisplayName,
		Extension:    d.Extension,
		LastOpenedAt: d.LastOpenedAt,
		LiveHandle:   d.LiveHandle.String(),
		HasSnapshot:  d.Snapshot != nil,
	}
	if d.Snapshot != nil {
		info.SnapshotSize = d.Snapshot.Size()
	}
	return info
}

// copy returns a value copy that shares nothing mutable with d
func (d *Document) copy() Document {
	c := *d
	if d.Snapshot != nil {
		snap := *d.Snapshot
		c.Snapshot = &snap
	}
	return c
}
