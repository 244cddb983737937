// Package record defines the searchable unit extracted from a document
// tree and the merge policy applied to adjacent text runs.
package record

import (
	"fmt"

	"github.com/docsift/docsift/internal/docpath"
)

// Record is one indexed text occurrence, merged or standalone.
type Record struct {
	// Type is the tag name of the element the text was found in.
	Type string `json:"type"`
	// Content is the extracted text.
	Content string `json:"content"`
	// ID is the display path of the text node's containing element.
	ID string `json:"id"`
}

// Strategy selects how adjacent text runs are combined into records.
type Strategy string

const (
	// StrategyMerge joins adjacency-compatible text runs into one record.
	StrategyMerge Strategy = "merge"
	// StrategySplit emits one record per text run, never merging.
	StrategySplit Strategy = "split"
	// StrategyBoth emits a standalone record per text run and keeps a
	// running merged record alongside, so callers get both fine-grained
	// and coarse entries in the same index.
	StrategyBoth Strategy = "both"
)

// ParseStrategy validates a strategy name. Empty input selects merge.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyMerge, StrategySplit, StrategyBoth:
		return Strategy(s), nil
	case "":
		return StrategyMerge, nil
	default:
		return "", fmt.Errorf("unknown merge strategy %q (want merge, split, or both)", s)
	}
}

// Batch accumulates records for one population run. It keeps the container
// path of the current merge target so adjacency is tested structurally
// rather than by slicing the rendered ID string. The zero value is not
// usable; construct with NewBatch.
type Batch struct {
	strategy Strategy
	records  []Record

	// Container path and tag of the last merge target, valid when
	// len(records) > 0.
	lastParent docpath.Path
	lastTag    string
}

// NewBatch creates an empty accumulator for the given strategy.
func NewBatch(strategy Strategy) *Batch {
	return &Batch{strategy: strategy}
}

// Add feeds one text run into the batch. tag is the containing element's
// tag name and path is the text node's own path; the record's ID is the
// path of the container (one level up).
func (b *Batch) Add(content, tag string, path docpath.Path) {
	parent := path.Parent()
	mergeable := len(b.records) > 0 &&
		tag == b.lastTag &&
		parent.SameContainer(b.lastParent)

	rec := Record{Type: tag, Content: content, ID: parent.String()}

	switch b.strategy {
	case StrategySplit:
		b.records = append(b.records, rec)

	case StrategyBoth:
		if mergeable {
			// Keep a standalone copy just before the running merge
			// target, then extend the target. The target's stored
			// container stays the one it was created with.
			last := len(b.records) - 1
			b.records = append(b.records[:last], rec, b.records[last])
			b.records[last+1].Content += " " + content
			return
		}
		// One record stays standalone, the other accumulates
		// subsequent mergeable runs.
		b.records = append(b.records, rec, rec)

	default: // StrategyMerge
		if mergeable {
			b.records[len(b.records)-1].Content += " " + content
			return
		}
		b.records = append(b.records, rec)
	}

	// Adjacency for the next run is tested against the record just
	// pushed, not against merged-in content.
	b.lastParent = parent
	b.lastTag = tag
}

// Records returns the accumulated records in emission order.
func (b *Batch) Records() []Record {
	return b.records
}

// Len returns the number of accumulated records.
func (b *Batch) Len() int {
	return len(b.records)
}
