package presenter

import (
	"path"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/GriffinCanCode/openedfiles/internal/domain/registry"
	"github.com/GriffinCanCode/openedfiles/internal/shared/types"
)

// MaxFuzzyDistance is the largest edit distance a suggestion may have when
// the query is not a substring of it.
const MaxFuzzyDistance = 2

// OpenMarks reports which switcher entries are tracked documents.
func (p *Presenter) OpenMarks(names []string) map[string]bool {
	open := p.openNames()

	marks := make(map[string]bool, len(names))
	for _, name := range names {
		marks[name] = open[name]
	}
	return marks
}

func (p *Presenter) openNames() map[string]bool {
	docs := p.source.Documents()
	open := make(map[string]bool, len(docs))
	for _, doc := range docs {
		open[SwitcherName(doc.Path, doc.Extension)] = true
	}
	return open
}

// Suggest ranks documents for a switcher query. Substring matches come
// first, then names within MaxFuzzyDistance edits; ties go to open
// documents, then shorter distance, then path. An empty query lists open
// documents first.
func (p *Presenter) Suggest(query string, limit int) []types.Suggestion {
	type candidate struct {
		suggestion types.Suggestion
		substring  bool
	}

	open := p.openNames()
	q := strings.ToLower(strings.TrimSpace(query))

	var candidates []candidate
	for _, docPath := range p.candidatePaths() {
		name := SwitcherName(docPath, strings.TrimPrefix(path.Ext(docPath), "."))
		lower := strings.ToLower(name)
		base := strings.ToLower(path.Base(name))

		c := candidate{suggestion: types.Suggestion{
			DisplayName: name,
			Path:        docPath,
			Open:        open[name],
		}}

		switch {
		case q == "":
			c.substring = true
		case strings.Contains(lower, q):
			c.substring = true
			c.suggestion.Distance = levenshtein.ComputeDistance(q, base)
		default:
			dist := levenshtein.ComputeDistance(q, base)
			if dist > MaxFuzzyDistance {
				continue
			}
			c.suggestion.Distance = dist
		}
		candidates = append(candidates, c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.substring != b.substring {
			return a.substring
		}
		if a.suggestion.Open != b.suggestion.Open {
			return a.suggestion.Open
		}
		if a.suggestion.Distance != b.suggestion.Distance {
			return a.suggestion.Distance < b.suggestion.Distance
		}
		return a.suggestion.Path < b.suggestion.Path
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	result := make([]types.Suggestion, len(candidates))
	for i, c := range candidates {
		result[i] = c.suggestion
	}
	return result
}

// candidatePaths merges catalog documents with tracked ones
func (p *Presenter) candidatePaths() []string {
	seen := make(map[string]bool)
	var paths []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			paths = append(paths, s)
		}
	}

	if p.catalog != nil {
		for _, s := range p.catalog.Documents() {
			add(s)
		}
	}
	for _, doc := range p.source.Documents() {
		add(doc.Path)
	}
	return paths
}

var _ Source = (*registry.Manager)(nil)
