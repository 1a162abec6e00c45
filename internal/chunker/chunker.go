// Package chunker turns parsed documents into token-sized chunks,
// selecting a splitting strategy per document and preserving
// domain-relevant boundaries such as requirement and risk ID lines.
package chunker

import (
	"sort"
	"strings"

	"github.com/regulaware/dossier-cli/internal/core/domain"
	"github.com/regulaware/dossier-cli/internal/logger"
)

// Chunker splits documents according to the strategy selected for each.
type Chunker struct{}

// New creates a chunker.
func New() *Chunker {
	return &Chunker{}
}

// Chunk splits one document into an ordered sequence of chunks. Empty
// content yields an empty sequence, never an error. A chunk only exceeds
// the strategy's token ceiling when no separator could divide an
// indivisible span; that is logged as a degraded-strategy event.
func (c *Chunker) Chunk(doc *domain.ParsedDocument) []domain.Chunk {
	if strings.TrimSpace(doc.Content) == "" {
		return nil
	}

	strategy := Select(doc)
	params := strategy.Params()
	logger.Debug("Chunking %s with strategy %s (max %d tokens, overlap %d)",
		doc.FileName, strategy, params.MaxTokens, params.Overlap)

	// Bodies are sized to MaxTokens minus the overlap so the injected
	// overlap head never pushes a chunk past the ceiling.
	bodyBudget := params.MaxTokens - params.Overlap
	if bodyBudget < 1 {
		bodyBudget = params.MaxTokens
	}

	var bodies []string
	degraded := false
	for _, segment := range c.segments(doc, strategy) {
		pieces, pieceDegraded := split(segment, bodyBudget, params.Separators)
		bodies = append(bodies, mergeSmall(pieces, bodyBudget)...)
		degraded = degraded || pieceDegraded
	}
	if degraded {
		logger.Warn("Degraded chunking for %s: no separator worked for some span, force-split by token position", doc.FileName)
	}

	chunks := make([]domain.Chunk, 0, len(bodies))
	offset := 0
	for i, body := range bodies {
		content := body
		if i > 0 {
			if tail := overlapTail(bodies[i-1], params.Overlap); tail != "" {
				content = tail + "\n" + body
			}
		}

		chunks = append(chunks, domain.Chunk{
			DocID:      doc.ID,
			PartID:     i + 1,
			Content:    content,
			Strategy:   strategy.String(),
			TokenCount: EstimateTokens(content),
			CharCount:  len(content),
			Metadata:   enrich(doc, content, offset),
		})
		offset += len(body)
	}

	logger.Debug("Chunked %s into %d chunks", doc.FileName, len(chunks))
	return chunks
}

// segments pre-cuts the content at declared section boundaries for the
// sectioned strategy. Every other strategy chunks the whole content.
func (c *Chunker) segments(doc *domain.ParsedDocument, strategy Strategy) []string {
	if strategy != StrategySectioned {
		return []string{doc.Content}
	}

	offsets := make([]int, 0, len(doc.Metadata.Sections))
	for _, sec := range doc.Metadata.Sections {
		if sec.Offset > 0 && sec.Offset < len(doc.Content) {
			offsets = append(offsets, sec.Offset)
		}
	}
	sort.Ints(offsets)

	var segments []string
	prev := 0
	for _, off := range offsets {
		if off <= prev {
			continue
		}
		segments = append(segments, doc.Content[prev:off])
		prev = off
	}
	segments = append(segments, doc.Content[prev:])
	return segments
}

// enrich builds the chunk metadata: page and section lookup by start
// offset, plus the document ID lists filtered down to identifiers that
// literally occur in the chunk text.
func enrich(doc *domain.ParsedDocument, content string, start int) domain.ChunkMetadata {
	return domain.ChunkMetadata{
		PageNumber:     pageAt(doc.Metadata.PageBreaks, start),
		SectionTitle:   sectionAt(doc.Metadata.Sections, start),
		RequirementIDs: presentIDs(doc.Metadata.RequirementIDs, content),
		RiskIDs:        presentIDs(doc.Metadata.RiskIDs, content),
		TestCaseIDs:    presentIDs(doc.Metadata.TestCaseIDs, content),
	}
}

// pageAt returns the 1-based page containing the offset: the last page
// break at or before the offset wins. Returns 0 when the document has no
// page-break table.
func pageAt(breaks []int, offset int) int {
	if len(breaks) == 0 {
		return 0
	}
	page := 1
	for _, b := range breaks {
		if b <= offset {
			page++
		}
	}
	return page
}

// sectionAt returns the title of the last section starting at or before
// the offset, or "" when no section table exists.
func sectionAt(sections []domain.SectionMarker, offset int) string {
	title := ""
	for _, sec := range sections {
		if sec.Offset <= offset {
			title = sec.Title
		}
	}
	return title
}

// presentIDs filters ids down to those occurring as literal substrings of
// the content. A chunk never claims an ID it does not contain.
func presentIDs(ids []string, content string) []string {
	var present []string
	for _, id := range ids {
		if id != "" && strings.Contains(content, id) {
			present = append(present, id)
		}
	}
	return present
}
