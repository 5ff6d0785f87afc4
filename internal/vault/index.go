package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// DefaultInclude matches markdown documents anywhere in the vault
var DefaultInclude = []string{"**/*.md"}

// Index is the set of documents in a vault
type Index struct {
	root    string
	include []string
	logger  *zap.Logger

	mu   sync.RWMutex
	docs map[string]struct{} // Protected by mu
}

// NewIndex creates an empty index over root
func NewIndex(root string, include []string, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %s is not a directory", abs)
	}

	return &Index{
		root:    abs,
		include: include,
		logger:  logger.Named("vault"),
		docs:    make(map[string]struct{}),
	}, nil
}

// Root returns the absolute vault root
func (ix *Index) Root() string {
	return ix.root
}

// Refresh rebuilds the index from disk
func (ix *Index) Refresh(ctx context.Context) error {
	var (
		mu    sync.Mutex
		found = make(map[string]struct{})
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, ix.root, func(p string, d os.DirEntry, err error) error {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != ix.root && hidden(d.Name()) {
				return fastwalk.SkipDir
			}
			return nil
		}

		rel, ok := ix.Rel(p)
		if !ok || !ix.Matches(rel) || !isText(p) {
			return nil
		}

		mu.Lock()
		found[rel] = struct{}{}
		mu.Unlock()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to index vault: %w", err)
	}

	ix.mu.Lock()
	ix.docs = found
	ix.mu.Unlock()

	ix.logger.Info("indexed vault",
		zap.String("root", ix.root),
		zap.Int("documents", len(found)))
	return nil
}

// Matches reports whether a relative path matches the include globs
func (ix *Index) Matches(rel string) bool {
	for _, pattern := range ix.include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Rel converts an absolute path inside the vault to its document path
func (ix *Index) Rel(abs string) (string, bool) {
	rel, err := filepath.Rel(ix.root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Abs converts a document path to an absolute path
func (ix *Index) Abs(rel string) string {
	return filepath.Join(ix.root, filepath.FromSlash(rel))
}

// Exists reports whether a document can be located. Paths that are not yet
// indexed are checked on disk and indexed when found.
func (ix *Index) Exists(rel string) bool {
	ix.mu.RLock()
	_, ok := ix.docs[rel]
	ix.mu.RUnlock()
	if ok {
		return true
	}

	info, err := os.Stat(ix.Abs(rel))
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if ix.Matches(rel) {
		ix.Add(rel)
	}
	return true
}

// Documents returns every indexed document, sorted
func (ix *Index) Documents() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	docs := make([]string, 0, len(ix.docs))
	for doc := range ix.docs {
		docs = append(docs, doc)
	}
	sort.Strings(docs)
	return docs
}

// Len returns the number of indexed documents
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Add indexes a document
func (ix *Index) Add(rel string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.docs[rel] = struct{}{}
}

// Remove drops a document and everything below it when rel is a folder.
// Returns the removed documents.
func (ix *Index) Remove(rel string) []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var removed []string
	prefix := rel + "/"
	for doc := range ix.docs {
		if doc == rel || strings.HasPrefix(doc, prefix) {
			delete(ix.docs, doc)
			removed = append(removed, doc)
		}
	}
	sort.Strings(removed)
	return removed
}

// Rename moves a document, or every document below a folder. Returns the
// old to new mapping of moved documents.
func (ix *Index) Rename(oldRel, newRel string) map[string]string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	moved := make(map[string]string)
	prefix := oldRel + "/"
	for doc := range ix.docs {
		switch {
		case doc == oldRel:
			moved[doc] = newRel
		case strings.HasPrefix(doc, prefix):
			moved[doc] = newRel + "/" + strings.TrimPrefix(doc, prefix)
		}
	}
	for from, to := range moved {
		delete(ix.docs, from)
		if ix.Matches(to) {
			ix.docs[to] = struct{}{}
		}
	}
	return moved
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// isText reports whether the file content looks like text
func isText(path string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
