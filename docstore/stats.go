package docstore

import (
	"context"
	"log"
)

// StatsCollector aggregates collection-level metrics from a bounded
// sample of stored metadata.
type StatsCollector struct {
	store *DocumentStore
}

// NewStatsCollector creates a StatsCollector over the given store.
func NewStatsCollector(store *DocumentStore) *StatsCollector {
	return &StatsCollector{store: store}
}

// StatsResult holds collection statistics. TotalDocuments is exact;
// TotalContentLength and AvgContentLength are estimates computed from a
// sample of at most Config.StatsSampleSize documents.
type StatsResult struct {
	CollectionName     string
	TotalDocuments     int
	TotalContentLength int
	AvgContentLength   int
	Initialized        bool
	Err                string
}

// Stats returns collection statistics. Backend failures are returned in
// the result; the only error is ErrUninitialized.
func (c *StatsCollector) Stats(ctx context.Context) (StatsResult, error) {
	idx, err := c.store.handle()
	if err != nil {
		return StatsResult{CollectionName: c.store.cfg.CollectionName}, err
	}

	result := StatsResult{
		CollectionName: c.store.cfg.CollectionName,
		Initialized:    true,
	}

	count, err := idx.Count(ctx)
	if err != nil {
		log.Printf("[STATS] count failed: err=%v", err)
		result.Err = err.Error()
		return result, nil
	}
	result.TotalDocuments = count

	sampleSize := c.store.cfg.StatsSampleSize
	if count < sampleSize {
		sampleSize = count
	}
	if sampleSize == 0 {
		return result, nil
	}

	sample, err := idx.Scan(ctx, sampleSize)
	if err != nil {
		log.Printf("[STATS] sample scan failed: err=%v", err)
		result.Err = err.Error()
		return result, nil
	}

	total := 0
	for _, item := range sample {
		if n, ok := contentLength(item.Metadata[MetaContentLength]); ok {
			total += n
		}
	}
	result.TotalContentLength = total
	if len(sample) > 0 {
		result.AvgContentLength = total / len(sample)
	}

	return result, nil
}

// contentLength coerces a metadata value to an int. Numeric metadata may
// round-trip through a backend as float64 (JSON semantics).
func contentLength(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
