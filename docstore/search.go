package docstore

import (
	"context"
	"log"
	"sort"
)

// previewChars is the length of SearchResult.ContentPreview before the
// ellipsis is appended.
const previewChars = 200

// SearchRanker issues similarity queries against the store's backend,
// re-sorts the hits by distance, and attaches content previews.
type SearchRanker struct {
	store *DocumentStore
}

// NewSearchRanker creates a SearchRanker over the given store.
func NewSearchRanker(store *DocumentStore) *SearchRanker {
	return &SearchRanker{store: store}
}

// SearchOption customizes a single Search call.
type SearchOption func(*searchOptions)

type searchOptions struct {
	limit  int
	filter map[string]any
}

// WithLimit caps the number of results. Defaults to Config.SearchLimit.
func WithLimit(limit int) SearchOption {
	return func(o *searchOptions) { o.limit = limit }
}

// WithFilter restricts hits to documents whose metadata exactly matches
// every given key/value pair.
func WithFilter(filter map[string]any) SearchOption {
	return func(o *searchOptions) { o.filter = filter }
}

// SearchResult is a single similarity hit.
type SearchResult struct {
	ID             string
	Content        string
	ContentPreview string
	Metadata       map[string]any
	Distance       float64
}

// Search returns up to limit documents most similar to query, ordered by
// non-decreasing distance. Search is best-effort: an empty collection, a
// filter with no matches, or a backend fault all yield an empty result set
// (faults are logged). The only error is ErrUninitialized.
func (r *SearchRanker) Search(ctx context.Context, query string, opts ...SearchOption) ([]SearchResult, error) {
	idx, err := r.store.handle()
	if err != nil {
		return nil, err
	}

	o := searchOptions{limit: r.store.cfg.SearchLimit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.limit <= 0 {
		o.limit = r.store.cfg.SearchLimit
	}

	vector, err := idx.Embed(ctx, query)
	if err != nil {
		log.Printf("[SEARCH] embed failed: query=%q err=%v", truncateLog(query, 50), err)
		return nil, nil
	}

	hits, err := idx.Query(ctx, vector, o.limit, o.filter)
	if err != nil {
		log.Printf("[SEARCH] query failed: query=%q err=%v", truncateLog(query, 50), err)
		return nil, nil
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, SearchResult{
			ID:             hit.ID,
			Content:        hit.Content,
			ContentPreview: preview(hit.Content),
			Metadata:       hit.Metadata,
			Distance:       hit.Distance,
		})
	}

	// Re-sort ascending by distance; the backend's order is not trusted.
	// Stable sort keeps backend order on ties.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	log.Printf("[SEARCH] query=%q returned %d results", truncateLog(query, 50), len(results))
	return results, nil
}

// preview returns the first previewChars characters of content, with an
// ellipsis when truncated.
func preview(content string) string {
	if len(content) <= previewChars {
		return content
	}
	return content[:previewChars] + "..."
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
