// Package codec captures and restores the transient editing state of an
// editing surface: selection, undo history and scroll offset.
//
// Capture produces a Snapshot that can outlive the surface. Restore replays
// a Snapshot onto a different, freshly created surface for the same
// document. History replay is best effort:
//   - HistoryLoader: the supported path
//   - UnsafeHistoryReplacer: legacy direct state replacement, opt-in only
//   - neither: selection and scroll only
//
// Large histories are kept zstd-compressed in memory.
//
// Example Usage:
//
//	c, err := codec.New(codec.Options{CompressThreshold: 64 << 10})
//	snap, err := c.Capture(oldSurface)
//	// ... later, for a new surface showing the same document
//	if err := c.Restore(snap, newSurface); err != nil {
//	    logger.Warn("partial restore", zap.Error(err))
//	}
package codec
