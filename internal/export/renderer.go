package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"docbrains-backend/internal/shared/metrics"
	"docbrains-backend/internal/shared/telemetry"
)

// ErrRender wraps layout engine failures.
var ErrRender = errors.New("pdf render failed")

const (
	margin       = 72.0
	titleSize    = 16.0
	titleLead    = 20.0
	bodySize     = 11.0
	bodyLead     = 14.0
	paragraphGap = 6.0
)

const utf8Family = "docbody"

// Renderer lays text out as a Letter-size PDF.
type Renderer struct {
	// Dir holds transient files from RenderFile; empty means os.TempDir.
	Dir string

	font []byte
}

// NewRenderer returns a Renderer writing transient files to dir.
func NewRenderer(dir string) *Renderer {
	return &Renderer{Dir: dir}
}

// LoadFont reads a TrueType font used for all text instead of the
// built-in Helvetica, so any Unicode text the font covers renders as is.
func (r *Renderer) LoadFont(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load export font: %w", err)
	}
	r.font = data
	return nil
}

// Lossy reports whether rendering s would replace characters with '?'.
// That happens only with the built-in font, which is limited to Windows-1252.
func (r *Renderer) Lossy(s string) bool {
	if r.font != nil {
		return false
	}
	for _, c := range s {
		if _, ok := charmap.Windows1252.EncodeRune(c); !ok {
			return true
		}
	}
	return false
}

// Render writes a PDF with title as heading and one block per non-blank line of text.
// Without a loaded font, text goes through the cp1252 translator; see Lossy.
func (r *Renderer) Render(w io.Writer, text, title string) error {
	start := time.Now()
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)
	doc.SetTitle(title, true)
	doc.SetCreator("docbrains", true)

	family, tr := "Helvetica", doc.UnicodeTranslatorFromDescriptor("")
	if r.font != nil {
		family, tr = utf8Family, func(s string) string { return s }
		doc.AddUTF8FontFromBytes(utf8Family, "", r.font)
		doc.AddUTF8FontFromBytes(utf8Family, "B", r.font)
	}

	doc.AddPage()
	doc.SetFont(family, "B", titleSize)
	doc.MultiCell(0, titleLead, tr(title), "", "L", false)
	doc.Ln(titleLead / 2)

	doc.SetFont(family, "", bodySize)
	paragraphs := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		doc.MultiCell(0, bodyLead, tr(line), "", "L", false)
		doc.Ln(paragraphGap)
		paragraphs++
	}

	if err := doc.Output(w); err != nil {
		metrics.IncExportFailed()
		telemetry.Error("export.render.failed", map[string]any{"title": title, "error": err})
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	metrics.IncExport()
	telemetry.Info("export.render", map[string]any{
		"title":       title,
		"utf8_font":   r.font != nil,
		"paragraphs":  paragraphs,
		"pages":       doc.PageNo(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// RenderFile renders into a new temp file and returns its path.
// The caller removes the file once it has been served.
func (r *Renderer) RenderFile(text, title string) (string, error) {
	f, err := os.CreateTemp(r.Dir, "export-*.pdf")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %w", ErrRender, err)
	}
	path := f.Name()
	if err := r.Render(f, text, title); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: close temp file: %w", ErrRender, err)
	}
	return path, nil
}
