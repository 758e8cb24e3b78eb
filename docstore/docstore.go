package docstore

import "context"

// VectorIndex is the persistence and similarity backend contract.
// Implementations: chromem-go index (local SDK), external vector databases
// (production).
//
// The store owns document semantics (ids, metadata merge, retention);
// the index owns embeddings, durability, and nearest-neighbor ranking.
type VectorIndex interface {
	// Embed converts text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Upsert stores a document under id, overwriting any previous document
	// with the same id. The vector is precomputed by the caller from the
	// indexed projection of the content; content itself is stored verbatim.
	Upsert(ctx context.Context, id string, vector []float32, content string, metadata map[string]any) error

	// Fetch retrieves a document by id. Absence is reported via found=false,
	// not an error.
	Fetch(ctx context.Context, id string) (content string, metadata map[string]any, found bool, err error)

	// Query returns up to k nearest neighbors of vector, optionally
	// pre-filtered by exact-match metadata predicates. Hit order is
	// backend-defined; callers must not rely on it.
	Query(ctx context.Context, vector []float32, k int, filter map[string]any) ([]QueryHit, error)

	// Delete removes the given ids. Ids that are absent are ignored.
	Delete(ctx context.Context, ids []string) error

	// Count returns the exact number of stored documents.
	Count(ctx context.Context) (int, error)

	// Scan returns id and metadata for up to limit documents; limit <= 0
	// scans the full collection. No ordering is guaranteed.
	Scan(ctx context.Context, limit int) ([]ScanItem, error)

	// Close releases backend resources.
	Close() error
}

// IndexOpener creates a VectorIndex over a storage directory and a named
// collection. DocumentStore.Initialize calls it exactly once.
type IndexOpener interface {
	Open(ctx context.Context, path string, collection string) (VectorIndex, error)
}

// OpenIndexFunc adapts a function to the IndexOpener interface.
type OpenIndexFunc func(ctx context.Context, path string, collection string) (VectorIndex, error)

// Open calls f.
func (f OpenIndexFunc) Open(ctx context.Context, path string, collection string) (VectorIndex, error) {
	return f(ctx, path, collection)
}

// Embedder converts text to vector embeddings.
// Implementations: mock (testing), ONNX all-MiniLM-L6-v2 (local SDK),
// API-based embedders (production).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// QueryHit is a single nearest-neighbor result from a VectorIndex.
type QueryHit struct {
	ID       string
	Distance float64 // lower is more similar; metric is backend-defined
	Metadata map[string]any
	Content  string
}

// ScanItem is one entry of a metadata scan.
type ScanItem struct {
	ID       string
	Metadata map[string]any
}
