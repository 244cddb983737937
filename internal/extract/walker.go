// Package extract walks parsed document trees and turns their text nodes
// into searchable records. The walk is depth-first pre-order; each node's
// position is tracked as a docpath.Path, and text runs are fed through the
// record merge policy. An optional TransformFunc rewrites elements before
// their subtrees are visited.
package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/docsift/docsift/internal/docpath"
	"github.com/docsift/docsift/internal/record"
)

// Options configures one extraction run. Immutable for its duration.
type Options struct {
	// Transform, when set, is applied to each element node with
	// descendants before its subtree is visited.
	Transform TransformFunc
	// Strategy selects the record merge policy. Defaults to merge.
	Strategy record.Strategy
	// BasePath prefixes every emitted path, typically the source file
	// name.
	BasePath string
}

// Records extracts the record batch for a parsed tree's top-level nodes.
// Each top-level node is assigned a root[i] path; records come back in
// depth-first encounter order, post merge policy.
func Records(roots []*html.Node, opts Options) ([]record.Record, error) {
	batch := record.NewBatch(opts.Strategy)
	for i, n := range roots {
		if err := visit(n, docpath.Root(opts.BasePath, i), batch, opts.Transform); err != nil {
			return nil, err
		}
	}
	return batch.Records(), nil
}

func visit(n *html.Node, path docpath.Path, batch *record.Batch, transform TransformFunc) error {
	// Reconcile before dispatching so a raw rewrite can change the node
	// kind entirely. Only elements with descendants are transformed.
	if transform != nil && n.Type == html.ElementNode && n.FirstChild != nil {
		repl, err := reconcile(n, transform)
		if err != nil {
			return err
		}
		if repl == nil {
			// Empty replacement markup drops the element.
			return nil
		}
		n = repl
	}

	switch n.Type {
	case html.TextNode:
		content := strings.TrimSpace(n.Data)
		if content == "" {
			return nil
		}
		// The record's type is the containing element's tag, which is
		// what the text node's final path segment names.
		batch.Add(content, path.LastTag(), path)

	case html.ElementNode:
		// Childless elements emit nothing but still occupied their
		// sibling index slot, which the parent's loop has assigned.
		i := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := visit(c, path.Child(n.Data, i), batch, transform); err != nil {
				return err
			}
			i++
		}
	}
	// Other node kinds (comments that survived minification, doctypes)
	// contribute nothing but consumed a sibling index.
	return nil
}
