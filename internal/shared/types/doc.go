// Package types provides shared data structures for the opened-files service.
//
// These types cross package boundaries: the registry produces them, the
// presenter and REST handlers render them, and the host bridge puts them on
// the wire.
//
// Read Types:
//   - DocumentItem: one row of the open-documents list
//   - DocumentInfo: full view of a tracked document
//   - Suggestion: quick-switcher candidate
//   - Stats: tracker statistics
//
// Request Types:
//   - OpenRequest, CloseRequest, SettingsRequest: REST bodies
//   - HostMessage: host to service WebSocket message
//   - ServerMessage: service to host WebSocket message
//
// Example Usage:
//
//	msg := types.ServerMessage{
//	    Type:  types.MsgRedraw,
//	    Items: presenter.Items(),
//	}
package types
