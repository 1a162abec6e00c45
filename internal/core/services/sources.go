package services

import (
	"fmt"
	"strings"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

// SourceTracker accumulates every document and standard referenced
// during context assembly and renders a stable citation block. Sources
// are deduplicated by identity (file path, or standard name); footnote
// order is insertion order.
type SourceTracker struct {
	sources map[string]domain.SourceReference
	order   []string
}

// NewSourceTracker creates an empty tracker.
func NewSourceTracker() *SourceTracker {
	return &SourceTracker{
		sources: make(map[string]domain.SourceReference),
	}
}

// AddFromRetrievalResults records the sources behind both match tiers.
// Adding the same source twice never creates a duplicate citation.
func (t *SourceTracker) AddFromRetrievalResults(procMatches, ctxMatches []domain.Match) {
	for _, m := range procMatches {
		t.addMatch(m)
	}
	for _, m := range ctxMatches {
		t.addMatch(m)
	}
}

// AddStandardReference records an explicitly named external standard
// (e.g., "ISO 14971") with the scope it was cited for.
func (t *SourceTracker) AddStandardReference(name, scope string) {
	t.add(domain.SourceReference{
		ID:         name,
		Name:       name,
		Category:   domain.CategoryStandard,
		ChunkIndex: -1,
		Citation:   scope,
	})
}

// SourceCount returns the number of distinct sources recorded.
func (t *SourceTracker) SourceCount() int {
	return len(t.order)
}

// Sources returns a copy of the id-to-reference map.
func (t *SourceTracker) Sources() map[string]domain.SourceReference {
	out := make(map[string]domain.SourceReference, len(t.sources))
	for id, ref := range t.sources {
		out[id] = ref
	}
	return out
}

// SourcesArray returns the references in insertion order.
func (t *SourceTracker) SourcesArray() []domain.SourceReference {
	out := make([]domain.SourceReference, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.sources[id])
	}
	return out
}

// GenerateFootnotes renders the citation block appendable to generated
// text. Returns "" when nothing was cited.
func (t *SourceTracker) GenerateFootnotes() string {
	if len(t.order) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n---\nSources:\n")
	for i, id := range t.order {
		ref := t.sources[id]
		fmt.Fprintf(&b, "[%d] %s", i+1, ref.Name)
		switch {
		case ref.Category == domain.CategoryStandard && ref.Citation != "":
			fmt.Fprintf(&b, " (%s, cited for %s)", ref.Category, ref.Citation)
		case ref.ChunkIndex > 0:
			fmt.Fprintf(&b, " (%s, chunk %d)", ref.Category, ref.ChunkIndex)
		default:
			fmt.Fprintf(&b, " (%s)", ref.Category)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (t *SourceTracker) addMatch(m domain.Match) {
	t.add(domain.SourceReference{
		ID:         m.Entry.FilePath,
		Name:       m.Entry.FileName,
		Category:   m.Entry.Category,
		ChunkIndex: m.Entry.ChunkIndex,
	})
}

func (t *SourceTracker) add(ref domain.SourceReference) {
	if _, ok := t.sources[ref.ID]; ok {
		return
	}
	t.sources[ref.ID] = ref
	t.order = append(t.order, ref.ID)
}
