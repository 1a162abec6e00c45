package domain

// Category partitions ingested material for retrieval.
type Category string

const (
	// CategoryProcedure marks internal process documents (SOPs, work instructions).
	CategoryProcedure Category = "procedure"

	// CategoryContext marks project-specific reference material.
	CategoryContext Category = "context"

	// CategoryStandard marks named external standards cited by name only.
	CategoryStandard Category = "standard"
)

// Partition maps a category to the search partition its chunks live in.
// Vector entries carry only procedure or context; the standard category
// is reserved for citation records, so standards material is stored and
// searched with context.
func (c Category) Partition() Category {
	if c == CategoryStandard {
		return CategoryContext
	}
	return c
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryProcedure, CategoryContext, CategoryStandard:
		return true
	}
	return false
}

// SourceReference is one deduplicated citation record tying generated
// content back to the document or standard that informed it.
type SourceReference struct {
	// ID is the source identity: the file path for documents, the name
	// for standards.
	ID string

	// Name is the display file or standard name.
	Name string

	// Category is the source kind (procedure, context, or standard).
	Category Category

	// ChunkIndex is the first cited chunk's ordinal, when known (-1 otherwise).
	ChunkIndex int

	// Citation is optional free text shown in the footnote (e.g., the
	// scope a standard was cited for).
	Citation string
}
