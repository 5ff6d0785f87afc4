// Package registry tracks the documents open in an editing workspace.
//
// The Manager owns the ordered list of tracked documents, most recently
// opened first. It reconciles host notifications (document opened, renamed,
// deleted, surface created and destroyed) against that list, keeps at most
// one live surface handle per document, and replays captured editor state
// when a document whose surface died is opened again.
//
// Components:
//   - Manager: document list, surface handle bookkeeping, restore step
//   - Host: query interface the Manager calls back into
//   - gc.go: sweep of stale handles and the max-open eviction policy
//
// Restore Guard:
//   - Set for the duration of one codec restore, released even on failure
//   - Surface registration and unregistration are ignored while it is set
//   - The manager lock is not held during the restore, so hosts may call
//     back synchronously
//
// Example Usage:
//
//	m := registry.NewManager(host, codec, logger).
//	    WithMetrics(metrics).
//	    WithLimits(settingsStore)
//	m.HandleFileOpen("notes/b.md")
//	docs := m.Documents()
package registry
