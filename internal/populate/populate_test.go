package populate

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sifterrors "github.com/docsift/docsift/internal/errors"
	"github.com/docsift/docsift/internal/parse"
	"github.com/docsift/docsift/internal/record"
)

// captureIndex records every inserted batch.
type captureIndex struct {
	mu      sync.Mutex
	batches [][]record.Record
}

func (c *captureIndex) Insert(_ context.Context, recs []record.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, recs)
	return nil
}

func (c *captureIndex) all() []record.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []record.Record
	for _, b := range c.batches {
		out = append(out, b...)
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew_RejectsUnknownStrategy(t *testing.T) {
	_, err := New(&captureIndex{}, Options{Strategy: "concat"})
	require.Error(t, err)
	assert.Equal(t, sifterrors.ErrCodeInvalidStrategy, sifterrors.GetCode(err))
}

func TestPopulateFile_HTML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "guide.html", `<div><p>A</p><p>B</p></div>`)

	idx := &captureIndex{}
	p, err := New(idx, Options{Strategy: record.StrategyMerge})
	require.NoError(t, err)

	n, err := p.PopulateFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recs := idx.all()
	require.Len(t, recs, 1)
	assert.Equal(t, "A B", recs[0].Content)
	assert.Equal(t, "guide.html.root[0].div[0]", recs[0].ID)
}

func TestPopulateFile_UnsupportedExtensionFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.txt", "plain text")

	idx := &captureIndex{}
	p, err := New(idx, Options{})
	require.NoError(t, err)

	_, err = p.PopulateFile(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, sifterrors.ErrCodeUnsupportedFormat, sifterrors.GetCode(err))
	assert.Empty(t, idx.all(), "failed file must not flush records")
}

func TestPopulateFile_MissingFileFails(t *testing.T) {
	idx := &captureIndex{}
	p, err := New(idx, Options{})
	require.NoError(t, err)

	_, err = p.PopulateFile(context.Background(), "/nonexistent/never.html")
	require.Error(t, err)
	assert.Equal(t, sifterrors.ErrCodeFileRead, sifterrors.GetCode(err))
}

func TestPopulateGlob_AllFilesOneBatchEach(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.html", `<p>alpha</p>`)
	writeFile(t, dir, "b.html", `<p>beta</p>`)
	writeFile(t, dir, "c.html", `<p>gamma</p>`)

	idx := &captureIndex{}
	p, err := New(idx, Options{Strategy: record.StrategySplit})
	require.NoError(t, err)

	n, err := p.PopulateGlob(context.Background(), filepath.Join(dir, "*.html"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, idx.batches, 3, "one insert per file")
}

func TestPopulateGlob_OneBadFileRejectsBatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.html", `<p>fine</p>`)
	writeFile(t, dir, "bad.txt", "nope")

	idx := &captureIndex{}
	p, err := New(idx, Options{})
	require.NoError(t, err)

	_, err = p.PopulateGlob(context.Background(), filepath.Join(dir, "*"))
	require.Error(t, err)
	assert.Equal(t, sifterrors.ErrCodeUnsupportedFormat, sifterrors.GetCode(err))
}

func TestPopulateGlob_NoMatchesIsNoop(t *testing.T) {
	idx := &captureIndex{}
	p, err := New(idx, Options{})
	require.NoError(t, err)

	n, err := p.PopulateGlob(context.Background(), filepath.Join(t.TempDir(), "*.html"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, idx.batches)
}

func TestPopulateBuffer_UsesOptionBasePath(t *testing.T) {
	idx := &captureIndex{}
	p, err := New(idx, Options{Strategy: record.StrategySplit, BasePath: "inline"})
	require.NoError(t, err)

	n, err := p.PopulateBuffer(context.Background(), []byte(`<p>buffered</p>`), parse.FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recs := idx.all()
	require.Len(t, recs, 1)
	assert.Equal(t, "inline.root[0]", recs[0].ID)
}

func TestRoundTrip_HTMLAndMarkdownDifferOnlyInPathPrefix(t *testing.T) {
	dir := t.TempDir()
	htmlPath := writeFile(t, dir, "doc.html", "<h1>Title</h1>\n<p>hello world</p>")
	mdPath := writeFile(t, dir, "doc.md", "# Title\n\nhello world\n")

	idx := &captureIndex{}
	p, err := New(idx, Options{Strategy: record.StrategySplit})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = p.PopulateFile(ctx, htmlPath)
	require.NoError(t, err)
	htmlRecs := idx.batches[0]

	_, err = p.PopulateFile(ctx, mdPath)
	require.NoError(t, err)
	mdRecs := idx.batches[1]

	require.Len(t, htmlRecs, 2)
	require.Len(t, mdRecs, 2)
	for i := range htmlRecs {
		assert.Equal(t, htmlRecs[i].Type, mdRecs[i].Type)
		assert.Equal(t, htmlRecs[i].Content, mdRecs[i].Content)
	}

	// The markdown path carries the wrapping document structure its
	// conversion adds.
	assert.Equal(t, "doc.html.root[0]", htmlRecs[0].ID)
	assert.Contains(t, mdRecs[0].ID, ".html[1].body[")
}

func TestFileRecords_CacheHitSkipsReparse(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cached.html", `<p>once</p>`)

	idx := &captureIndex{}
	p, err := New(idx, Options{Strategy: record.StrategySplit})
	require.NoError(t, err)

	first, err := p.fileRecords(path)
	require.NoError(t, err)
	second, err := p.fileRecords(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.cache.Len())
}
