// Package index wraps Bleve v2 as the destination for extracted records.
// The core only ever writes whole per-source batches; querying exists for
// the CLI search surface.
package index

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"

	sifterrors "github.com/docsift/docsift/internal/errors"
	"github.com/docsift/docsift/internal/record"
)

// Index stores records for full-text search over their content.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

// Result is one search hit with its stored record fields.
type Result struct {
	Record record.Record
	Score  float64
}

// Open opens or creates an on-disk index at path. A corrupt index is
// removed and recreated; records must then be repopulated.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildMapping())
	} else if err != nil && isCorruptionError(err) {
		if removeErr := os.RemoveAll(path); removeErr != nil {
			return nil, sifterrors.New(sifterrors.ErrCodeCorruptIndex,
				fmt.Sprintf("index corrupt and cannot be cleared: %v", removeErr), err)
		}
		idx, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, sifterrors.Wrap(sifterrors.ErrCodeIndexFailed, err)
	}
	return &Index{index: idx, path: path}, nil
}

// OpenMem creates an in-memory index, used for buffer population and
// tests.
func OpenMem() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, sifterrors.Wrap(sifterrors.ErrCodeIndexFailed, err)
	}
	return &Index{index: idx}, nil
}

// buildMapping maps records as {type, content, id}: content is analyzed
// full text, type and id are stored keywords.
func buildMapping() *mapping.IndexMappingImpl {
	contentField := bleve.NewTextFieldMapping()

	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("content", contentField)
	doc.AddFieldMappingsAt("type", keywordField)
	doc.AddFieldMappingsAt("id", keywordField)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// Insert adds one population batch in a single Bleve batch. Record IDs are
// container paths and may repeat within a batch, so document keys get an
// ordinal suffix; the record's own id stays a stored field.
func (x *Index) Insert(ctx context.Context, recs []record.Record) error {
	if len(recs) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return sifterrors.New(sifterrors.ErrCodeIndexFailed, "index is closed", nil)
	}

	batch := x.index.NewBatch()
	for i, rec := range recs {
		key := fmt.Sprintf("%s#%d", rec.ID, i)
		if err := batch.Index(key, rec); err != nil {
			return sifterrors.Wrap(sifterrors.ErrCodeIndexFailed, err)
		}
	}

	if err := x.index.Batch(batch); err != nil {
		return sifterrors.Wrap(sifterrors.ErrCodeIndexFailed, err)
	}
	return nil
}

// Search matches query against record content and returns up to limit
// results with their stored fields.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return nil, sifterrors.New(sifterrors.ErrCodeSearchFailed, "index is closed", nil)
	}
	if strings.TrimSpace(query) == "" {
		return nil, sifterrors.New(sifterrors.ErrCodeEmptyQuery, "empty search query", nil)
	}

	mq := bleve.NewMatchQuery(query)
	mq.SetField("content")

	req := bleve.NewSearchRequest(mq)
	req.Size = limit
	req.Fields = []string{"type", "content", "id"}

	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, sifterrors.Wrap(sifterrors.ErrCodeSearchFailed, err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, Result{
			Record: record.Record{
				Type:    fieldString(hit.Fields, "type"),
				Content: fieldString(hit.Fields, "content"),
				ID:      fieldString(hit.Fields, "id"),
			},
			Score: hit.Score,
		})
	}
	return results, nil
}

// Count returns the number of indexed records.
func (x *Index) Count() (uint64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return 0, sifterrors.New(sifterrors.ErrCodeIndexFailed, "index is closed", nil)
	}
	count, err := x.index.DocCount()
	if err != nil {
		return 0, sifterrors.Wrap(sifterrors.ErrCodeIndexFailed, err)
	}
	return count, nil
}

// Close releases the underlying Bleve index. Safe to call once.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil
	}
	x.closed = true
	return x.index.Close()
}

func fieldString(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

// isCorruptionError checks if an error indicates Bleve index corruption.
func isCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	if err == bleve.ErrorIndexMetaCorrupt || err == bleve.ErrorIndexMetaMissing {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "unexpected end of JSON") ||
		strings.Contains(msg, "error parsing mapping JSON") ||
		strings.Contains(msg, "error opening bolt")
}
