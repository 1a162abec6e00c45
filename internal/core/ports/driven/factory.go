package driven

// VectorStoreFactory creates project-scoped vector stores. Each project
// folder maps to exactly one backing cache file.
type VectorStoreFactory interface {
	// StoreFor returns an empty store bound to the project's cache file.
	// Callers decide whether to Load it or rebuild from documents.
	StoreFor(projectPath string) VectorStore

	// Remove deletes the project's cache file. Missing files are not an
	// error; the cache is self-healing.
	Remove(projectPath string) error
}
