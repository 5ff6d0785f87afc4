// Package ws connects an editor host to the opened-files registry over a
// WebSocket.
//
// Each connection gets a Bridge, which becomes the registry's Host for as
// long as the connection lives. Host surfaces are mirrored as
// RemoteSurfaces: the codec reads their last reported state and its
// restore writes are batched into a single restore command.
//
// Message Types (Host → Service):
//   - surface-created: a surface was instantiated (key, initial state)
//   - surface-destroyed: a surface is being torn down (key, final state)
//   - file-open: a document was opened or focused (path, layout)
//   - visible: layout changed
//   - rename, delete: document identity changes
//   - close-active: close the focused document
//   - ping: keep-alive
//
// The first message carrying a layout, visible or file-open, adopts the
// documents the host already shows.
//
// Message Types (Service → Host):
//   - surface-bound: handle assigned to a surface key
//   - restore: editing state to apply to a surface
//   - close-panes, open-pane: pane commands
//   - notice: transient user message
//   - redraw: new list rows
//   - pong, error
//
// On disconnect every mirrored surface is destroyed, so the registry keeps
// a snapshot for each document the host was showing.
//
// Example Usage:
//
//	handler := ws.NewHandler(manager, presenter, codec, logger).WithLocator(index)
//	router.GET("/stream", handler.HandleConnection)
package ws
