// Package chromem implements the docstore VectorIndex contract over
// chromem-go, a pure Go embedded vector database with a persistent
// on-disk mode.
package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/dgraph-io/ristretto"
	chromem "github.com/philippgille/chromem-go"

	"github.com/becomeliminal/docmem/docstore"
)

const defaultCacheEntries = 4096

// Opener opens persistent chromem-backed indexes. It satisfies
// docstore.IndexOpener.
type Opener struct {
	// Embedder converts text to vectors. Required.
	Embedder docstore.Embedder

	// Compress enables gzip compression of the on-disk files.
	Compress bool

	// CacheEntries bounds the embedding cache. 0 uses the default.
	CacheEntries int64
}

// Open creates the persistent database under path and opens (or creates)
// the named collection.
func (o Opener) Open(ctx context.Context, path string, collection string) (docstore.VectorIndex, error) {
	if o.Embedder == nil {
		return nil, fmt.Errorf("chromem: embedder is required")
	}

	db, err := chromem.NewPersistentDB(path, o.Compress)
	if err != nil {
		return nil, fmt.Errorf("open persistent db: %w", err)
	}

	embedFn := chromem.EmbeddingFunc(o.Embedder.Embed)
	col, err := db.GetOrCreateCollection(collection, nil, embedFn)
	if err != nil {
		return nil, fmt.Errorf("get or create collection: %w", err)
	}

	entries := o.CacheEntries
	if entries <= 0 {
		entries = defaultCacheEntries
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: entries * 10,
		MaxCost:     entries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("embed cache: %w", err)
	}

	log.Printf("[CHROMEM] opened collection=%s path=%s docs=%d", collection, path, col.Count())
	return &Index{col: col, embedder: o.Embedder, cache: cache}, nil
}

// Index is a chromem-go backed VectorIndex.
type Index struct {
	col      *chromem.Collection
	embedder docstore.Embedder
	cache    *ristretto.Cache
}

// Embed converts text to a vector, serving repeated texts from a
// bounded in-process cache.
func (ix *Index) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := ix.cache.Get(text); ok {
		if vec, ok := v.([]float32); ok {
			return vec, nil
		}
	}

	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	ix.cache.Set(text, vec, 1)
	return vec, nil
}

// Upsert stores a document, overwriting any existing document with the
// same id.
func (ix *Index) Upsert(ctx context.Context, id string, vector []float32, content string, metadata map[string]any) error {
	doc := chromem.Document{
		ID:        id,
		Content:   content,
		Embedding: vector,
		Metadata:  encodeMetadata(metadata),
	}
	if err := ix.col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Fetch retrieves a document by id.
func (ix *Index) Fetch(ctx context.Context, id string) (string, map[string]any, bool, error) {
	doc, err := ix.col.GetByID(ctx, id)
	if err != nil {
		// chromem reports a missing id as an error; map it to found=false.
		if strings.Contains(err.Error(), "not found") {
			return "", nil, false, nil
		}
		return "", nil, false, fmt.Errorf("get by id: %w", err)
	}
	return doc.Content, decodeMetadata(doc.Metadata), true, nil
}

// Query returns up to k nearest neighbors. chromem rejects k above the
// collection size, so k is clamped to the current document count.
func (ix *Index) Query(ctx context.Context, vector []float32, k int, filter map[string]any) ([]docstore.QueryHit, error) {
	if n := ix.col.Count(); k > n {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}

	// A filter can shrink the candidate set below k, which chromem
	// rejects; retry with smaller k until it fits.
	var results []chromem.Result
	for ; k >= 1; k-- {
		var err error
		results, err = ix.col.QueryEmbedding(ctx, vector, k, encodeMetadata(filter), nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if k == 1 {
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	hits := make([]docstore.QueryHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, docstore.QueryHit{
			ID:       r.ID,
			Distance: 1 - float64(r.Similarity),
			Metadata: decodeMetadata(r.Metadata),
			Content:  r.Content,
		})
	}
	return hits, nil
}

// Delete removes the given ids. Absent ids are no-ops.
func (ix *Index) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := ix.col.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (ix *Index) Count(ctx context.Context) (int, error) {
	return ix.col.Count(), nil
}

// Scan returns id and metadata for up to limit documents (limit <= 0
// scans everything). chromem exposes no listing API, so the scan is a
// probe query with k = min(limit, count); with k = count it is total.
func (ix *Index) Scan(ctx context.Context, limit int) ([]docstore.ScanItem, error) {
	total := ix.col.Count()
	if total == 0 {
		return nil, nil
	}
	k := total
	if limit > 0 && limit < total {
		k = limit
	}

	probe := make([]float32, ix.embedder.Dimensions())
	probe[0] = 1

	results, err := ix.col.QueryEmbedding(ctx, probe, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("scan query: %w", err)
	}

	items := make([]docstore.ScanItem, 0, len(results))
	for _, r := range results {
		items = append(items, docstore.ScanItem{ID: r.ID, Metadata: decodeMetadata(r.Metadata)})
	}
	return items, nil
}

// Close releases the embedding cache. chromem itself flushes to disk on
// every write and holds nothing that needs closing.
func (ix *Index) Close() error {
	ix.cache.Close()
	return nil
}

// isInsufficientDocsError reports whether a query failed only because
// nResults exceeded the available documents.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}

// encodeMetadata flattens scalar metadata into chromem's string-valued
// map. Every value is JSON-encoded so decoding is unambiguous (a raw "42"
// cannot be mistaken for a number).
func encodeMetadata(md map[string]any) map[string]string {
	if len(md) == 0 {
		return nil
	}
	out := make(map[string]string, len(md))
	for k, v := range md {
		b, err := json.Marshal(v)
		if err != nil {
			out[k] = fmt.Sprintf("%v", v)
			continue
		}
		out[k] = string(b)
	}
	return out
}

// decodeMetadata reverses encodeMetadata. Numbers come back as float64
// per JSON semantics; unparseable values are kept as raw strings.
func decodeMetadata(md map[string]string) map[string]any {
	out := make(map[string]any, len(md))
	for k, raw := range md {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			out[k] = raw
			continue
		}
		out[k] = v
	}
	return out
}
