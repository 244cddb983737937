// Package parse turns HTML and Markdown sources into walkable document
// trees. Markdown is rendered to HTML first (goldmark), so both formats
// produce the same node shape for extraction. Parsing itself is fully
// delegated to goldmark and golang.org/x/net/html; this package only
// selects and wires them.
package parse

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	sifterrors "github.com/docsift/docsift/internal/errors"
)

// Format identifies a supported source document format.
type Format string

const (
	// FormatHTML parses the source directly as an HTML fragment.
	FormatHTML Format = "html"
	// FormatMarkdown renders the source to HTML before parsing.
	FormatMarkdown Format = "markdown"
)

// md renders Markdown the way the docs pipelines in this ecosystem do:
// GFM tables/strikethrough/tasklists, autolinks, raw HTML passed through.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Linkify),
	goldmark.WithRendererOptions(ghtml.WithUnsafe()),
)

// DetectFormat infers the document format from a file extension. Anything
// other than HTML or Markdown fails fast rather than being skipped.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", sifterrors.New(sifterrors.ErrCodeUnsupportedFormat,
			"no parser for file type", nil).WithDetail("path", path)
	}
}

// Parse builds the document tree for the given format, returning its
// top-level nodes in source order.
func Parse(data []byte, format Format) ([]*html.Node, error) {
	switch format {
	case FormatHTML:
		return HTML(data)
	case FormatMarkdown:
		return Markdown(data)
	default:
		return nil, sifterrors.New(sifterrors.ErrCodeUnsupportedFormat,
			"no parser for format", nil).WithDetail("format", string(format))
	}
}

// HTML parses bytes as an HTML fragment in body context. The source's own
// top-level elements become the walk roots; no html/head/body wrapping is
// injected.
func HTML(data []byte) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(bytes.NewReader(data), bodyContext())
	if err != nil {
		return nil, sifterrors.Wrap(sifterrors.ErrCodeParseFailed, err)
	}
	return nodes, nil
}

// Markdown renders Markdown to HTML and parses the result as a full
// document. The html/head/body wrapping the full parse adds shows up as
// extra leading path segments on extracted records.
func Markdown(data []byte) ([]*html.Node, error) {
	var buf bytes.Buffer
	if err := md.Convert(data, &buf); err != nil {
		return nil, sifterrors.Wrap(sifterrors.ErrCodeParseFailed, err)
	}

	doc, err := html.Parse(&buf)
	if err != nil {
		return nil, sifterrors.Wrap(sifterrors.ErrCodeParseFailed, err)
	}

	var roots []*html.Node
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		roots = append(roots, c)
	}
	return roots, nil
}

// Fragment re-parses a markup string produced by a node transform, in
// body context. Used to reconcile raw rewrites back into the tree.
func Fragment(raw string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(raw), bodyContext())
	if err != nil {
		return nil, sifterrors.Wrap(sifterrors.ErrCodeParseFailed, err)
	}
	return nodes, nil
}

// Render serializes the subtree rooted at n back to markup.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", sifterrors.Wrap(sifterrors.ErrCodeInternal, err)
	}
	return buf.String(), nil
}

func bodyContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}
