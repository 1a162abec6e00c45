package filesystem

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

// Identifier patterns scanned at the document level. The chunker narrows
// these lists to the IDs actually present in each chunk.
var (
	riskIDPattern        = regexp.MustCompile(`\b(?:RISK|HAZ|FMEA)[-_]?\d+\b`)
	requirementIDPattern = regexp.MustCompile(`\b(?:REQ|SRS|PRS|DI|DO|UN)[-_]?\d+\b`)
	testCaseIDPattern    = regexp.MustCompile(`\b(?:TC|TEST|VER|VAL)[-_]?\d+\b`)
)

// markdownHeading matches ATX headings used as section boundaries.
var markdownHeading = regexp.MustCompile(`(?m)^#{1,3}\s+(.+)$`)

// numberedHeading matches plain-text headings like "3.2 Sampling Plan".
var numberedHeading = regexp.MustCompile(`(?m)^\d+(?:\.\d+)*\.?\s+(\S.*)$`)

// extractMetadata derives the structural metadata the chunker consumes
// from front matter, the file name, and the document text.
func extractMetadata(path, content string, front map[string]string) domain.DocumentMetadata {
	meta := domain.DocumentMetadata{
		DocumentType:   documentType(path, front),
		Phase:          front["phase"],
		RequirementIDs: uniqueMatches(requirementIDPattern, content),
		RiskIDs:        uniqueMatches(riskIDPattern, content),
		TestCaseIDs:    uniqueMatches(testCaseIDPattern, content),
		Sections:       scanSections(path, content),
	}

	if v, err := strconv.ParseFloat(front["ocr_confidence"], 64); err == nil {
		meta.OCRDerived = true
		meta.OCRConfidence = v
	} else if front["ocr"] == "true" {
		meta.OCRDerived = true
		meta.OCRConfidence = 1.0
	}

	meta.PageBreaks = pageBreaks(content)
	if len(meta.PageBreaks) > 0 {
		meta.PageCount = len(meta.PageBreaks) + 1
	} else if v, err := strconv.Atoi(front["pages"]); err == nil {
		meta.PageCount = v
	}

	if len(front) > 0 {
		meta.Extra = make(map[string]string, len(front))
		for k, v := range front {
			meta.Extra[k] = v
		}
	}

	return meta
}

// typeKeywords maps file-name fragments to regulatory document types,
// checked in order so more specific fragments win.
var typeKeywords = []struct {
	fragment string
	docType  string
}{
	{"risk", "risk-analysis"},
	{"fmea", "risk-analysis"},
	{"hazard", "risk-analysis"},
	{"design-input", "design-input"},
	{"requirement", "design-input"},
	{"design-output", "design-output"},
	{"test-report", "test-report"},
	{"test", "test-protocol"},
	{"protocol", "test-protocol"},
	{"verification", "verification"},
	{"validation", "test-protocol"},
}

// documentType resolves the regulatory document kind. Front matter wins
// over file-name heuristics; an empty result means "untyped".
func documentType(path string, front map[string]string) string {
	if t := front["type"]; t != "" {
		return t
	}

	name := strings.ToLower(filepath.Base(path))
	for _, kw := range typeKeywords {
		if strings.Contains(name, kw.fragment) {
			return kw.docType
		}
	}
	return ""
}

// scanSections builds the section-boundary table. Markdown files use ATX
// headings; plain text falls back to numbered headings.
func scanSections(path, content string) []domain.SectionMarker {
	pattern := numberedHeading
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".md" || ext == ".markdown" {
		pattern = markdownHeading
	}

	idxs := pattern.FindAllStringSubmatchIndex(content, -1)
	if len(idxs) == 0 {
		return nil
	}

	sections := make([]domain.SectionMarker, 0, len(idxs))
	for _, m := range idxs {
		sections = append(sections, domain.SectionMarker{
			Title:  strings.TrimSpace(content[m[2]:m[3]]),
			Offset: m[0],
		})
	}
	return sections
}

// pageBreaks returns the offset of each form-feed page break, in order.
func pageBreaks(content string) []int {
	var breaks []int
	for i, r := range content {
		if r == '\f' {
			breaks = append(breaks, i)
		}
	}
	return breaks
}

// uniqueMatches returns pattern matches deduplicated in first-seen order.
func uniqueMatches(pattern *regexp.Regexp, content string) []string {
	matches := pattern.FindAllString(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// splitFrontMatter separates an optional leading front-matter block
// (lines of "key: value" pairs between "---" fences) from the body.
// Documents without a block come back unchanged with a nil map.
func splitFrontMatter(content string) (map[string]string, string) {
	if !strings.HasPrefix(content, "---\n") {
		return nil, content
	}

	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, content
	}

	front := make(map[string]string)
	for _, line := range strings.Split(rest[:end], "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		front[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}

	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return front, body
}
