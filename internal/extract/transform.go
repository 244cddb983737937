package extract

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/docsift/docsift/internal/parse"
)

// NodeContent is the caller-facing view of an element during
// transformation. It is a detached value: mutating it does nothing until
// the transform's return value is reconciled back into the tree.
type NodeContent struct {
	// Tag is the element's tag name.
	Tag string
	// Content is the element's flattened descendant text, in order.
	Content string
	// Raw is the serialized markup of the element and its subtree.
	Raw string
}

// TransformFunc rewrites an element's view before its subtree is indexed.
// It is called once per element node encountered during traversal and its
// return value is taken as authoritative.
type TransformFunc func(NodeContent) NodeContent

// reconcile applies fn to n's view and folds the result back into the
// tree. It returns the node traversal should continue into: n itself
// (possibly renamed or with rewritten text), a replacement parsed from a
// changed Raw, or nil when the replacement markup is empty, which drops
// the element.
//
// A changed Raw wins over Tag/Content edits. When the replacement markup
// parses to several top-level nodes only the first is kept.
func reconcile(n *html.Node, fn TransformFunc) (*html.Node, error) {
	view, err := nodeView(n)
	if err != nil {
		return nil, err
	}

	out := fn(view)

	if out.Raw != view.Raw {
		nodes, err := parse.Fragment(out.Raw)
		if err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			return nil, nil
		}
		if len(nodes) > 1 {
			slog.Warn("transform produced multiple top-level nodes, keeping first",
				slog.String("tag", view.Tag),
				slog.Int("nodes", len(nodes)))
		}
		return nodes[0], nil
	}

	if out.Tag != view.Tag {
		n.Data = out.Tag
		n.DataAtom = atom.Lookup([]byte(out.Tag))
	}
	if out.Content != view.Content {
		replaceText(n, out.Content)
	}
	return n, nil
}

// nodeView builds the detached NodeContent view of an element.
func nodeView(n *html.Node) (NodeContent, error) {
	raw, err := parse.Render(n)
	if err != nil {
		return NodeContent{}, err
	}
	return NodeContent{
		Tag:     n.Data,
		Content: textContent(n),
		Raw:     raw,
	}, nil
}

// textContent concatenates all descendant text of n in document order.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// replaceText swaps n's entire subtree for a single text node.
func replaceText(n *html.Node, content string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: content})
}
