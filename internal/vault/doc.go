// Package vault is the filesystem-backed document model.
//
// Index walks the vault root and keeps the set of documents matching the
// include globs; binary files are skipped. Watcher follows the tree with
// fsnotify and reports renames and deletions made outside the editor.
//
// All paths handed out are relative to the root and slash-separated.
//
// Example Usage:
//
//	ix, err := vault.NewIndex(root, []string{"**/*.md"}, logger)
//	err = ix.Refresh(ctx)
//	w, err := vault.NewWatcher(ix, handler, 100*time.Millisecond, logger)
//	go w.Run(ctx)
package vault
