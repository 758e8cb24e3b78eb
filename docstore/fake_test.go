package docstore_test

import (
	"context"

	"github.com/becomeliminal/docmem/docstore"
)

// fakeDoc is one document held by fakeIndex.
type fakeDoc struct {
	content  string
	metadata map[string]any
	vector   []float32
}

// fakeIndex is an in-memory VectorIndex with per-operation error
// injection, used to exercise the store's failure folding without a real
// backend.
type fakeIndex struct {
	docs  map[string]*fakeDoc
	order []string

	embedErr  error
	upsertErr error
	fetchErr  error
	queryErr  error
	deleteErr error
	countErr  error
	scanErr   error

	queryHits []docstore.QueryHit

	lastQueryK      int
	lastQueryFilter map[string]any
	scanLimits      []int
	closed          bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[string]*fakeDoc)}
}

// opener returns an IndexOpener that hands out this fake.
func (f *fakeIndex) opener() docstore.IndexOpener {
	return docstore.OpenIndexFunc(func(ctx context.Context, path, collection string) (docstore.VectorIndex, error) {
		return f, nil
	})
}

func (f *fakeIndex) put(id, content string, metadata map[string]any) {
	if _, exists := f.docs[id]; !exists {
		f.order = append(f.order, id)
	}
	f.docs[id] = &fakeDoc{content: content, metadata: metadata}
}

func (f *fakeIndex) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return []float32{float32(len(text)), 1}, nil
}

func (f *fakeIndex) Upsert(ctx context.Context, id string, vector []float32, content string, metadata map[string]any) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if _, exists := f.docs[id]; !exists {
		f.order = append(f.order, id)
	}
	f.docs[id] = &fakeDoc{content: content, metadata: metadata, vector: vector}
	return nil
}

func (f *fakeIndex) Fetch(ctx context.Context, id string) (string, map[string]any, bool, error) {
	if f.fetchErr != nil {
		return "", nil, false, f.fetchErr
	}
	doc, ok := f.docs[id]
	if !ok {
		return "", nil, false, nil
	}
	return doc.content, doc.metadata, true, nil
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, k int, filter map[string]any) ([]docstore.QueryHit, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	f.lastQueryK = k
	f.lastQueryFilter = filter
	return f.queryHits, nil
}

func (f *fakeIndex) Delete(ctx context.Context, ids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for _, id := range ids {
		if _, ok := f.docs[id]; !ok {
			continue
		}
		delete(f.docs, id)
		for i, ord := range f.order {
			if ord == id {
				f.order = append(f.order[:i], f.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (f *fakeIndex) Count(ctx context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.docs), nil
}

func (f *fakeIndex) Scan(ctx context.Context, limit int) ([]docstore.ScanItem, error) {
	f.scanLimits = append(f.scanLimits, limit)
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	items := make([]docstore.ScanItem, 0, len(f.order))
	for _, id := range f.order {
		if limit > 0 && len(items) >= limit {
			break
		}
		items = append(items, docstore.ScanItem{ID: id, Metadata: f.docs[id].metadata})
	}
	return items, nil
}

func (f *fakeIndex) Close() error {
	f.closed = true
	return nil
}
