package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRenderProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer("").Render(&buf, "First paragraph.\n\n\r\nSecond paragraph with accents: café.", "Summary - report.pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRenderPaginatesLongText(t *testing.T) {
	var lines []string
	for i := 0; i < 200; i++ {
		lines = append(lines, strings.Repeat("Lorem ipsum dolor sit amet. ", 6))
	}
	var buf bytes.Buffer
	require.NoError(t, NewRenderer("").Render(&buf, strings.Join(lines, "\n"), "Full Text - long.pdf"))

	r, err := pdf.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Greater(t, r.NumPage(), 1)
}

func TestRenderMarkupCharactersArePlainText(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer("").Render(&buf, "<b>not bold</b> & (parens) \\ backslash", "Schema - x")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRenderFileWritesTempFile(t *testing.T) {
	dir := t.TempDir()
	path, err := NewRenderer(dir).RenderFile("body", "Title")
	require.NoError(t, err)
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.True(t, strings.HasPrefix(path, dir))
}

func TestRenderFileBadDir(t *testing.T) {
	_, err := NewRenderer("/nonexistent/dir/for/export").RenderFile("body", "Title")
	assert.ErrorIs(t, err, ErrRender)
}

func TestLossyDetectsCharactersOutsideBuiltinFont(t *testing.T) {
	r := NewRenderer("")
	assert.False(t, r.Lossy("Un café crème, 5€"))
	assert.True(t, r.Lossy("Привет мир"))
	assert.True(t, r.Lossy("你好"))
}

func TestLoadFontMakesExportLossless(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.ttf")
	require.NoError(t, os.WriteFile(path, []byte("font bytes"), 0o644))

	r := NewRenderer("")
	require.NoError(t, r.LoadFont(path))
	assert.False(t, r.Lossy("Привет мир 你好"))
}

func TestLoadFontMissingFile(t *testing.T) {
	r := NewRenderer("")
	assert.Error(t, r.LoadFont(filepath.Join(t.TempDir(), "missing.ttf")))
	assert.True(t, r.Lossy("Привет"))
}

func TestWriteCatalog(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []CatalogRow{
		{ID: "doc-1", FileName: "a.pdf", ContentType: "application/pdf", FileSize: 10, ExtractionMethod: "pdf-text", TextLength: 120, HasSummary: true, CreatedAt: created},
		{ID: "doc-2", FileName: "b.png", ContentType: "image/png", FileSize: 20, ExtractionMethod: "remote-transcription", CreatedAt: created},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(catalogSheet)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "File Name", got[0][1])
	assert.Equal(t, "a.pdf", got[1][1])
	assert.Equal(t, "yes", got[1][6])
	assert.Equal(t, "no", got[2][6])
	assert.Equal(t, "2025-03-01T10:00:00Z", got[1][8])
}
