// Package main is the entry point for the opened-files service.
//
// The service keeps the list of documents open in a connected editor host,
// remembers each document's view state between openings, and serves the
// list and a fuzzy switcher over REST.
//
//	Editor host ⇄ /stream (WebSocket) ⇄ registry ⇄ REST clients
//	                                       ↑
//	                              vault watcher (fsnotify)
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags override the environment
//
// Usage:
//
//	./server -port 8000 -vault ~/notes
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
