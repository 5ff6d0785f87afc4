// Package http provides the REST API of the opened-files tracker.
//
// Endpoints:
//   - Health: / and /health
//   - List: GET /documents, GET /documents/snapshot?path=
//   - Commands: POST /documents/open, /documents/close,
//     /documents/close-active, /documents/clear
//   - Switcher: GET /switcher?q=&limit=, POST /switcher/marks
//   - Settings: GET and PUT /settings
//
// Registry errors map to status codes: untracked or missing documents are
// 404, no connected host is 503, no focused document is 409.
//
// Example Usage:
//
//	handlers := http.NewHandlers(manager, presenter, store, logger)
//	handlers.Register(router)
package http
