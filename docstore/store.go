package docstore

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"
)

type storeState int

const (
	stateUninitialized storeState = iota
	stateReady
	stateClosed
)

// DocumentStore owns document persistence, id generation, metadata merge,
// and the storage lifecycle (Uninitialized -> Ready -> Closed).
//
// A store assumes a single logical owner; see the package documentation
// for the concurrency model.
type DocumentStore struct {
	cfg    *Config
	opener IndexOpener
	idx    VectorIndex
	state  storeState
	now    func() time.Time
}

// New creates a DocumentStore over the given backend opener.
// The store is Uninitialized until Initialize is called.
func New(cfg *Config, opener IndexOpener) *DocumentStore {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg.applyDefaults()
	}
	return &DocumentStore{
		cfg:    cfg,
		opener: opener,
		now:    time.Now,
	}
}

// Config returns the store's configuration.
func (s *DocumentStore) Config() *Config {
	return s.cfg
}

// Initialize creates the storage path if absent, opens the named
// collection, and transitions the store to Ready. Calling Initialize on a
// store that is already Ready is a logged no-op. A closed store cannot be
// re-opened; Initialize then returns ErrClosed.
func (s *DocumentStore) Initialize(ctx context.Context) error {
	switch s.state {
	case stateReady:
		log.Printf("[DOCSTORE] already initialized, collection=%s", s.cfg.CollectionName)
		return nil
	case stateClosed:
		return ErrClosed
	}

	if err := os.MkdirAll(s.cfg.StoragePath, 0o755); err != nil {
		return fmt.Errorf("create storage path: %w", err)
	}

	idx, err := s.opener.Open(ctx, s.cfg.StoragePath, s.cfg.CollectionName)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}

	s.idx = idx
	s.state = stateReady
	log.Printf("[DOCSTORE] initialized collection=%s path=%s", s.cfg.CollectionName, s.cfg.StoragePath)
	return nil
}

// handle returns the backend for operations, guarding the state machine.
// SearchRanker, RetentionManager, and StatsCollector reach the backend
// through this as well; nothing bypasses the store.
func (s *DocumentStore) handle() (VectorIndex, error) {
	if s.state != stateReady {
		return nil, ErrUninitialized
	}
	return s.idx, nil
}

// StoreOption customizes a single Store call.
type StoreOption func(*storeOptions)

type storeOptions struct {
	id       string
	metadata map[string]any
}

// WithID supplies the document id instead of deriving one from content.
func WithID(id string) StoreOption {
	return func(o *storeOptions) { o.id = id }
}

// WithMetadata attaches caller-supplied metadata. Values should be scalars
// (string, number, boolean). The system-managed created_at and
// content_length fields overwrite caller values of the same name.
func WithMetadata(md map[string]any) StoreOption {
	return func(o *storeOptions) { o.metadata = md }
}

// StoreResult reports the outcome of a Store call. Stored is the success
// discriminant; when false, Err carries the backend failure message and ID
// still names the attempted document.
type StoreResult struct {
	Stored        bool
	ID            string
	ContentLength int
	CreatedAt     string
	Metadata      map[string]any
	Err           string
}

// Store persists a document. The first EmbedCharLimit characters are
// embedded for similarity search; the full content is stored verbatim.
// Backend failures are returned in the result, never as an error; the only
// error is ErrUninitialized.
func (s *DocumentStore) Store(ctx context.Context, content string, opts ...StoreOption) (StoreResult, error) {
	idx, err := s.handle()
	if err != nil {
		return StoreResult{}, err
	}

	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}

	now := s.now()
	id := o.id
	if id == "" {
		id = NewDocumentID(content, now)
	}
	metadata := mergeMetadata(o.metadata, content, now)

	projection := content
	if len(projection) > s.cfg.EmbedCharLimit {
		projection = projection[:s.cfg.EmbedCharLimit]
	}

	vector, err := idx.Embed(ctx, projection)
	if err != nil {
		log.Printf("[DOCSTORE] store failed: op=embed id=%s err=%v", id, err)
		return StoreResult{ID: id, Err: err.Error()}, nil
	}

	if err := idx.Upsert(ctx, id, vector, content, metadata); err != nil {
		log.Printf("[DOCSTORE] store failed: op=upsert id=%s err=%v", id, err)
		return StoreResult{ID: id, Err: err.Error()}, nil
	}

	log.Printf("[DOCSTORE] stored document %s (%d chars)", id, len(content))
	return StoreResult{
		Stored:        true,
		ID:            id,
		ContentLength: len(content),
		CreatedAt:     metadata[MetaCreatedAt].(string),
		Metadata:      metadata,
	}, nil
}

// GetResult reports the outcome of a Get call. Found=false with an empty
// Err is the normal not-found outcome; a non-empty Err is a backend
// failure.
type GetResult struct {
	Found bool
	Doc   Document
	Err   string
}

// Get retrieves a document by id. Absence is an expected outcome, not an
// error; the only error is ErrUninitialized.
func (s *DocumentStore) Get(ctx context.Context, id string) (GetResult, error) {
	idx, err := s.handle()
	if err != nil {
		return GetResult{}, err
	}

	content, metadata, found, err := idx.Fetch(ctx, id)
	if err != nil {
		log.Printf("[DOCSTORE] get failed: id=%s err=%v", id, err)
		return GetResult{Err: err.Error()}, nil
	}
	if !found {
		return GetResult{}, nil
	}

	return GetResult{
		Found: true,
		Doc:   Document{ID: id, Content: content, Metadata: metadata},
	}, nil
}

// DeleteResult reports the outcome of a Delete call.
type DeleteResult struct {
	Deleted bool
	ID      string
	Err     string
}

// Delete removes a document by id. Deleting an absent id reports success:
// the post-condition (the id is absent) holds either way. The only error
// is ErrUninitialized.
func (s *DocumentStore) Delete(ctx context.Context, id string) (DeleteResult, error) {
	idx, err := s.handle()
	if err != nil {
		return DeleteResult{}, err
	}

	if err := idx.Delete(ctx, []string{id}); err != nil {
		log.Printf("[DOCSTORE] delete failed: id=%s err=%v", id, err)
		return DeleteResult{ID: id, Err: err.Error()}, nil
	}

	log.Printf("[DOCSTORE] deleted document %s", id)
	return DeleteResult{Deleted: true, ID: id}, nil
}

// Close releases the backend handle and transitions the store to Closed.
// Closing is terminal and idempotent: subsequent calls are no-ops, and it
// is safe to call from a cleanup path on any exit, including after a
// partial Initialize failure.
func (s *DocumentStore) Close() error {
	if s.state != stateReady {
		s.state = stateClosed
		return nil
	}

	err := s.idx.Close()
	s.idx = nil
	s.state = stateClosed
	if err != nil {
		log.Printf("[DOCSTORE] close: backend error: %v", err)
		return fmt.Errorf("close index: %w", err)
	}
	log.Printf("[DOCSTORE] closed collection=%s", s.cfg.CollectionName)
	return nil
}
