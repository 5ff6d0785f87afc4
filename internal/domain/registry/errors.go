package registry

import "errors"

var (
	// ErrDocumentNotFound is returned when the host can no longer locate a
	// tracked document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrNotTracked is returned for a path that is not in the list.
	ErrNotTracked = errors.New("document not tracked")
	// ErrNoHost is returned when an operation needs a connected host.
	ErrNoHost = errors.New("no host connected")
	// ErrNoActiveDocument is returned when the host has no focused document.
	ErrNoActiveDocument = errors.New("no active document")
)
