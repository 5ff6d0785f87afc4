package presenter

import (
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/openedfiles/internal/domain/registry"
	"github.com/GriffinCanCode/openedfiles/internal/shared/types"
)

// Source is the registry as seen by the presenter
type Source interface {
	Documents() []registry.Document
	ActiveDocument() string
	Close(path string) error
	Clear() int
	Open(path string, split bool) error
	Subscribe(fn func()) func()
}

// Catalog lists every document that could be opened
type Catalog interface {
	Documents() []string
}

// Presenter is the read side of the opened-files list
type Presenter struct {
	source  Source
	catalog Catalog
	logger  *zap.Logger
}

// New creates a presenter. catalog may be nil; suggestions then only cover
// tracked documents.
func New(source Source, catalog Catalog, logger *zap.Logger) *Presenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Presenter{
		source:  source,
		catalog: catalog,
		logger:  logger.Named("presenter"),
	}
}

// Items returns the list rows, most recent first
func (p *Presenter) Items() []types.DocumentItem {
	active := p.source.ActiveDocument()
	docs := p.source.Documents()

	items := make([]types.DocumentItem, len(docs))
	for i, doc := range docs {
		items[i] = types.DocumentItem{
			DisplayName: doc.DisplayName,
			Path:        doc.Path,
			Active:      active != "" && doc.Path == active,
		}
	}
	return items
}

// Documents returns the full view of every tracked document
func (p *Presenter) Documents() []types.DocumentInfo {
	docs := p.source.Documents()
	infos := make([]types.DocumentInfo, len(docs))
	for i, doc := range docs {
		infos[i] = doc.Info()
	}
	return infos
}

// CloseOne closes a document from its close button
func (p *Presenter) CloseOne(path string) error {
	p.logger.Debug("closing file", zap.String("path", path))
	return p.source.Close(path)
}

// ClearAll empties the list
func (p *Presenter) ClearAll() int {
	return p.source.Clear()
}

// Open shows a document picked from the list
func (p *Presenter) Open(path string, split bool) error {
	return p.source.Open(path, split)
}

// OnChange registers a redraw callback
func (p *Presenter) OnChange(fn func()) func() {
	return p.source.Subscribe(fn)
}

// SwitcherName is how the quick switcher shows a path: the path without
// its extension.
func SwitcherName(path, extension string) string {
	if extension == "" {
		return path
	}
	return strings.TrimSuffix(path, "."+extension)
}
