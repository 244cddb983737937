package parse

import (
	"strings"

	"golang.org/x/net/html"
)

// Elements whose text is never worth indexing.
var skippedElements = map[string]struct{}{
	"script": {},
	"style":  {},
}

// Elements whose text must keep its whitespace verbatim.
var preformattedElements = map[string]struct{}{
	"pre":      {},
	"textarea": {},
}

// Minify runs the cleanup pass over a parsed tree before extraction:
// comments, doctypes and script/style subtrees are removed, whitespace-only
// text nodes are dropped, and remaining text has whitespace runs collapsed
// to single spaces. Preformatted content is left untouched. The returned
// slice replaces the input roots.
func Minify(roots []*html.Node) []*html.Node {
	out := roots[:0]
	for _, n := range roots {
		if !keep(n) {
			continue
		}
		if n.Type == html.TextNode {
			n.Data = collapse(n.Data)
			if n.Data == "" {
				continue
			}
		}
		minifyChildren(n, false)
		out = append(out, n)
	}
	return out
}

func minifyChildren(n *html.Node, pre bool) {
	if n.Type == html.ElementNode {
		if _, ok := preformattedElements[n.Data]; ok {
			pre = true
		}
	}

	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		switch {
		case !keep(c):
			n.RemoveChild(c)
		case c.Type == html.TextNode && !pre:
			c.Data = collapse(c.Data)
			if c.Data == "" {
				n.RemoveChild(c)
			}
		default:
			minifyChildren(c, pre)
		}
		c = next
	}
}

func keep(n *html.Node) bool {
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return false
	case html.ElementNode:
		_, skipped := skippedElements[n.Data]
		return !skipped
	default:
		return true
	}
}

// collapse squeezes whitespace runs to single spaces. Boundary whitespace
// survives as one space so word separation across inline elements holds;
// fully blank input collapses to "".
func collapse(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
