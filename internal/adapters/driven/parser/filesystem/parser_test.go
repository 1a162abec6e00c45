package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParser_Supported(t *testing.T) {
	p := New()

	assert.True(t, p.Supported("doc.txt"))
	assert.True(t, p.Supported("doc.md"))
	assert.True(t, p.Supported("DOC.MD"))
	assert.True(t, p.Supported("doc.markdown"))
	assert.False(t, p.Supported("doc.pdf"))
	assert.False(t, p.Supported("doc"))
}

func TestParser_ParseProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.md", "# Beta\n\nsecond file")
	writeFile(t, dir, "a.txt", "first file")
	writeFile(t, dir, "skip.pdf", "binary")
	writeFile(t, dir, ".hidden/secret.txt", "hidden")

	p := New()
	docs, err := p.ParseProject(context.Background(), dir)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	// Ordered by path
	assert.Equal(t, "a.txt", docs[0].FileName)
	assert.Equal(t, "b.md", docs[1].FileName)
	assert.Equal(t, "text/plain", docs[0].MIMEType)
	assert.Equal(t, "text/markdown", docs[1].MIMEType)
	assert.NotEmpty(t, docs[0].ID)
	assert.NotEqual(t, docs[0].ID, docs[1].ID)
}

func TestParser_ParseProject_NotFound(t *testing.T) {
	p := New()

	_, err := p.ParseProject(context.Background(), "/nonexistent/project")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestParser_ParseProject_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "file.txt", "content")

	p := New()
	_, err := p.ParseProject(context.Background(), path)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParser_ParseProject_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New()
	_, err := p.ParseProject(ctx, dir)

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParser_ParseFile_NotFound(t *testing.T) {
	p := New()

	_, err := p.ParseFile(context.Background(), "/nonexistent/file.txt")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestParser_ParseFile_Unsupported(t *testing.T) {
	p := New()

	_, err := p.ParseFile(context.Background(), "/some/file.pdf")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParser_CategoryFromDirectory(t *testing.T) {
	dir := t.TempDir()
	proc := writeFile(t, dir, "procedures/cleaning.md", "# Cleaning")
	std := writeFile(t, dir, "standards/iso.txt", "standard text")
	ctxDoc := writeFile(t, dir, "notes/misc.txt", "misc")

	p := New()

	doc, err := p.ParseFile(context.Background(), proc)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryProcedure, doc.Category)

	doc, err = p.ParseFile(context.Background(), std)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryStandard, doc.Category)

	doc, err = p.ParseFile(context.Background(), ctxDoc)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryContext, doc.Category)
}

func TestParser_CategoryFromFileName(t *testing.T) {
	dir := t.TempDir()
	sop := writeFile(t, dir, "SOP-007-sterilisation.md", "# Sterilisation")
	iso := writeFile(t, dir, "ISO-13485-excerpt.txt", "excerpt")

	p := New()

	doc, err := p.ParseFile(context.Background(), sop)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryProcedure, doc.Category)

	doc, err = p.ParseFile(context.Background(), iso)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryStandard, doc.Category)
}

func TestParser_CategoryFromFrontMatter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes/doc.md", "---\ncategory: procedure\n---\n# Body")

	p := New()
	doc, err := p.ParseFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, domain.CategoryProcedure, doc.Category)
	assert.NotContains(t, doc.Content, "category:")
}

func TestParser_FrontMatter_InvalidCategoryIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "---\ncategory: bogus\n---\nbody")

	p := New()
	doc, err := p.ParseFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, domain.CategoryContext, doc.Category)
}

func TestParser_DocumentTypeFromFileName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"risk-analysis-v2.md", "risk-analysis"},
		{"FMEA-pump.txt", "risk-analysis"},
		{"design-input-list.md", "design-input"},
		{"requirements.txt", "design-input"},
		{"test-report-final.md", "test-report"},
		{"verification-matrix.txt", "verification"},
		{"meeting-notes.txt", ""},
	}

	dir := t.TempDir()
	p := New()

	for _, tt := range tests {
		path := writeFile(t, dir, tt.name, "content")
		doc, err := p.ParseFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, doc.Metadata.DocumentType, "file %s", tt.name)
	}
}

func TestParser_DocumentTypeFromFrontMatterWins(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "---\ntype: risk-analysis\n---\nbody")

	p := New()
	doc, err := p.ParseFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "risk-analysis", doc.Metadata.DocumentType)
}

func TestParser_OCRFrontMatter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scan.txt", "---\nocr_confidence: 0.55\n---\nnoisy text")

	p := New()
	doc, err := p.ParseFile(context.Background(), path)

	require.NoError(t, err)
	assert.True(t, doc.Metadata.OCRDerived)
	assert.InDelta(t, 0.55, doc.Metadata.OCRConfidence, 0.0001)
}

func TestParser_SectionsFromMarkdownHeadings(t *testing.T) {
	dir := t.TempDir()
	content := "# Purpose\n\nintro\n\n## Scope\n\ndetails\n\n## Responsibilities\n\nwho"
	path := writeFile(t, dir, "sop.md", content)

	p := New()
	doc, err := p.ParseFile(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, doc.Metadata.Sections, 3)
	assert.Equal(t, "Purpose", doc.Metadata.Sections[0].Title)
	assert.Equal(t, 0, doc.Metadata.Sections[0].Offset)
	assert.Equal(t, "Scope", doc.Metadata.Sections[1].Title)
	assert.Equal(t, "Responsibilities", doc.Metadata.Sections[2].Title)
	// Offsets are ordered
	assert.Less(t, doc.Metadata.Sections[1].Offset, doc.Metadata.Sections[2].Offset)
}

func TestParser_SectionsFromNumberedHeadings(t *testing.T) {
	dir := t.TempDir()
	content := "1. Purpose\nintro\n2. Scope\ndetails\n2.1 Exclusions\nnone"
	path := writeFile(t, dir, "sop.txt", content)

	p := New()
	doc, err := p.ParseFile(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, doc.Metadata.Sections, 3)
	assert.Equal(t, "Purpose", doc.Metadata.Sections[0].Title)
	assert.Equal(t, "Exclusions", doc.Metadata.Sections[2].Title)
}

func TestParser_PageBreaks(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "paged.txt", "page one\fpage two\fpage three")

	p := New()
	doc, err := p.ParseFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []int{8, 17}, doc.Metadata.PageBreaks)
	assert.Equal(t, 3, doc.Metadata.PageCount)
}

func TestParser_PageCountFromFrontMatter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "long.txt", "---\npages: 120\n---\nbody")

	p := New()
	doc, err := p.ParseFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 120, doc.Metadata.PageCount)
}

func TestParser_IdentifierScan(t *testing.T) {
	dir := t.TempDir()
	content := "RISK-001 mitigated by REQ-042 verified in TC-007. RISK-001 repeated."
	path := writeFile(t, dir, "matrix.txt", content)

	p := New()
	doc, err := p.ParseFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []string{"RISK-001"}, doc.Metadata.RiskIDs)
	assert.Equal(t, []string{"REQ-042"}, doc.Metadata.RequirementIDs)
	assert.Equal(t, []string{"TC-007"}, doc.Metadata.TestCaseIDs)
}

func TestSplitFrontMatter_NoBlock(t *testing.T) {
	front, body := splitFrontMatter("plain content")

	assert.Nil(t, front)
	assert.Equal(t, "plain content", body)
}

func TestSplitFrontMatter_UnterminatedBlock(t *testing.T) {
	content := "---\nkey: value\nno closing fence"
	front, body := splitFrontMatter(content)

	assert.Nil(t, front)
	assert.Equal(t, content, body)
}

func TestSplitFrontMatter_QuotedValues(t *testing.T) {
	front, body := splitFrontMatter("---\nphase: \"design\"\n---\nbody text")

	require.NotNil(t, front)
	assert.Equal(t, "design", front["phase"])
	assert.Equal(t, "body text", body)
}
