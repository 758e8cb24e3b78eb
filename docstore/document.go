package docstore

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// Metadata keys managed by the store. They are set on every successful
// store and overwrite caller-supplied values of the same name.
const (
	// MetaCreatedAt holds the ingestion timestamp as an RFC 3339 UTC string.
	// Second precision keeps the format fixed-width, so lexicographic order
	// equals chronological order (retention relies on this).
	MetaCreatedAt = "created_at"

	// MetaContentLength holds the byte length of the original content,
	// not the truncated projection submitted for embedding.
	MetaContentLength = "content_length"
)

// Document is a stored text document with its metadata.
// Documents are immutable once stored; re-storing the same id overwrites.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// NewDocumentID derives a document id from a content digest and the
// ingestion time: doc_<first 8 hex of md5>_<unix seconds>. Identical
// content re-ingested at a different second gets a distinct id.
func NewDocumentID(content string, now time.Time) string {
	sum := md5.Sum([]byte(content))
	return fmt.Sprintf("doc_%s_%d", hex.EncodeToString(sum[:])[:8], now.Unix())
}

// mergeMetadata copies the caller-supplied metadata and stamps the
// system-managed fields. The caller's map is never mutated.
func mergeMetadata(caller map[string]any, content string, now time.Time) map[string]any {
	md := make(map[string]any, len(caller)+2)
	for k, v := range caller {
		md[k] = v
	}
	md[MetaCreatedAt] = now.UTC().Format(time.RFC3339)
	md[MetaContentLength] = len(content)
	return md
}
