// Package surface observes the lifecycle of editing surfaces.
//
// An Observer is attached to every surface the host instantiates. It mints
// the surface handle, announces the surface to a Sink, and when the host
// tears the surface down it captures the editing state and hands it to the
// Sink together with the handle.
//
// Tracker is the adapter a host installs to report surface creation and
// destruction by its own surface keys.
//
// Example Usage:
//
//	tracker := surface.NewTracker(registry, codec, logger)
//	tracker.Install()
//	tracker.Created("leaf-7", editorView)
//	// ... host closes the pane
//	tracker.Destroyed("leaf-7")
package surface
