package types

import "time"

// DocumentItem is one entry of the open-documents list, most recent first.
type DocumentItem struct {
	DisplayName string `json:"display_name"`
	Path        string `json:"path"`
	Active      bool   `json:"active"`
}

// DocumentInfo describes a tracked document for inspection endpoints.
type DocumentInfo struct {
	Path         string    `json:"path"`
	DisplayName  string    `json:"display_name"`
	Extension    string    `json:"extension"`
	LastOpenedAt time.Time `json:"last_opened_at"`
	LiveHandle   string    `json:"live_handle,omitempty"`
	HasSnapshot  bool      `json:"has_snapshot"`
	SnapshotSize int       `json:"snapshot_size,omitempty"`
}

// Suggestion is a quick-switcher candidate.
type Suggestion struct {
	DisplayName string `json:"display_name"`
	Path        string `json:"path"`
	Open        bool   `json:"open"`
	Distance    int    `json:"distance"`
}

// Stats contains tracker statistics
type Stats struct {
	TrackedDocuments int     `json:"tracked_documents"`
	LiveSurfaces     int     `json:"live_surfaces"`
	Snapshots        int     `json:"snapshots"`
	PendingSurface   *string `json:"pending_surface,omitempty"`
	Restoring        bool    `json:"restoring"`
	MaxOpen          int     `json:"max_open"`
}
