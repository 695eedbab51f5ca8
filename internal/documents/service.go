package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"docbrains-backend/internal/enrich"
	"docbrains-backend/internal/export"
	"docbrains-backend/internal/extract"
	"docbrains-backend/internal/shared/metrics"
	"docbrains-backend/internal/shared/storage/object"
	"docbrains-backend/internal/shared/telemetry"
	"docbrains-backend/internal/shared/util"
)

// DefaultMaxUploadBytes is the exclusive upload size limit (100 MiB).
const DefaultMaxUploadBytes int64 = 100 << 20

// TextExtractor turns upload bytes into text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (extract.Result, error)
}

// ContentGenerator produces summaries and schemas.
type ContentGenerator interface {
	Summary(ctx context.Context, text string, opts enrich.SummaryOptions) (string, error)
	Schema(ctx context.Context, text string, style enrich.SchemaStyle) (string, error)
}

// PDFRenderer renders text into a transient PDF file.
// Lossy reports whether some characters of the text cannot be drawn.
type PDFRenderer interface {
	RenderFile(text, title string) (string, error)
	Lossy(text string) bool
}

// Service contains business logic for documents.
type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Extractor TextExtractor
	Generator ContentGenerator
	Renderer  PDFRenderer

	MaxUploadBytes int64
	Now            func() time.Time
}

// UploadInput is a file received from a client.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// SummaryRequest selects the summary variant.
type SummaryRequest struct {
	Length   string
	Accuracy string
}

// Export content kinds.
const (
	ContentSummary = "summary"
	ContentSchema  = "schema"
	ContentFull    = "full"
)

// ExportFile is a rendered PDF waiting to be served.
type ExportFile struct {
	Path     string
	FileName string
	Title    string
	// Lossy is set when characters outside the export font were replaced.
	Lossy bool
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) maxUpload() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}

// TooLarge reports whether size reaches the upload limit.
func (s *Service) TooLarge(size int64) bool {
	return size >= s.maxUpload()
}

// Upload validates, extracts and records a new document.
// Nothing is persisted unless extraction yields text.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Document, error) {
	fileName := strings.TrimSpace(in.FileName)
	if fileName == "" || in.Body == nil {
		return Document{}, ErrInvalidInput
	}
	if s.TooLarge(in.Size) {
		metrics.IncUploadsRejected()
		return Document{}, ErrFileTooLarge
	}
	if in.ContentType != "" {
		if _, err := extract.StrategyFor(in.ContentType); err != nil {
			metrics.IncUploadsRejected()
			return Document{}, ErrUnsupportedType
		}
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, s.maxUpload()))
	if err != nil {
		return Document{}, fmt.Errorf("read upload: %w", err)
	}
	if s.TooLarge(int64(len(data))) {
		metrics.IncUploadsRejected()
		return Document{}, ErrFileTooLarge
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	contentType = extract.NormalizeContentType(contentType)

	res, err := s.Extractor.Extract(ctx, data, contentType)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUnsupportedType):
			metrics.IncUploadsRejected()
			return Document{}, ErrUnsupportedType
		case errors.Is(err, extract.ErrRemote):
			return Document{}, fmt.Errorf("%w: text extraction: %w", ErrUpstream, err)
		default:
			return Document{}, err
		}
	}
	if strings.TrimSpace(res.Text) == "" {
		metrics.IncUploadsRejected()
		return Document{}, ErrEmptyExtraction
	}

	now := s.now()
	doc := Document{
		ID:               uuid.NewString(),
		FileName:         fileName,
		ContentType:      contentType,
		FileSize:         int64(len(data)),
		Checksum:         util.Checksum(data),
		ExtractedText:    res.Text,
		ExtractionMethod: res.Method,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	doc.StorageKey = s.archive(ctx, doc, data)

	if err := s.Repo.Create(ctx, doc); err != nil {
		s.removeArchive(ctx, doc)
		return Document{}, err
	}

	metrics.IncUploads()
	telemetry.Info("document.uploaded", map[string]any{
		"document_id":       doc.ID,
		"content_type":      doc.ContentType,
		"file_size":         doc.FileSize,
		"extraction_method": doc.ExtractionMethod,
		"text_length":       len(doc.ExtractedText),
	})
	return doc, nil
}

// archive keeps a copy of the original bytes; failures only cost the copy.
func (s *Service) archive(ctx context.Context, doc Document, data []byte) string {
	if s.Store == nil {
		return ""
	}
	key, _, _, err := s.Store.Save(ctx, doc.ID, doc.FileName, bytes.NewReader(data))
	if err != nil {
		telemetry.Warn("document.archive.failed", map[string]any{"document_id": doc.ID, "error": err})
		return ""
	}
	return key
}

func (s *Service) removeArchive(ctx context.Context, doc Document) {
	if s.Store == nil || doc.StorageKey == "" {
		return
	}
	if err := s.Store.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("document.archive.delete_failed", map[string]any{"document_id": doc.ID, "error": err})
	}
}

// OpenOriginal streams the archived upload of a document.
// Documents without an archived copy report ErrNoOriginal.
func (s *Service) OpenOriginal(ctx context.Context, id string) (io.ReadCloser, Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, Document{}, err
	}
	if s.Store == nil || doc.StorageKey == "" {
		return nil, Document{}, ErrNoOriginal
	}
	rc, err := s.Store.Open(ctx, doc.StorageKey)
	if errors.Is(err, object.ErrNotFound) {
		return nil, Document{}, ErrNoOriginal
	}
	if err != nil {
		return nil, Document{}, fmt.Errorf("open original: %w", err)
	}
	return rc, doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	if strings.TrimSpace(id) == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns documents newest first.
func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.Repo.List(ctx, MaxListLimit)
}

// Delete removes a document and its archived original.
// Chat turns that reference it are kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeArchive(ctx, doc)
	telemetry.Info("document.deleted", map[string]any{"document_id": id})
	return nil
}

// GenerateSummary generates and stores a summary, replacing any previous one.
func (s *Service) GenerateSummary(ctx context.Context, id string, req SummaryRequest) (Document, error) {
	doc, err := s.textDocument(ctx, id)
	if err != nil {
		return Document{}, err
	}
	opts := enrich.SummaryOptions{
		Length:   enrich.ParseLength(req.Length),
		Accuracy: enrich.ParseAccuracy(req.Accuracy),
	}
	text, err := s.Generator.Summary(ctx, doc.ExtractedText, opts)
	if err != nil {
		return Document{}, fmt.Errorf("%w: summary generation: %w", ErrUpstream, err)
	}
	at := s.now()
	if err := s.Repo.UpdateSummary(ctx, id, text, string(opts.Length), at); err != nil {
		return Document{}, err
	}
	doc.SummaryText = text
	doc.SummaryType = string(opts.Length)
	doc.UpdatedAt = at
	return doc, nil
}

// GenerateSchema generates and stores a schema, replacing any previous one.
func (s *Service) GenerateSchema(ctx context.Context, id string, style string) (Document, error) {
	doc, err := s.textDocument(ctx, id)
	if err != nil {
		return Document{}, err
	}
	parsed := enrich.ParseSchemaStyle(style)
	text, err := s.Generator.Schema(ctx, doc.ExtractedText, parsed)
	if err != nil {
		return Document{}, fmt.Errorf("%w: schema generation: %w", ErrUpstream, err)
	}
	at := s.now()
	if err := s.Repo.UpdateSchema(ctx, id, text, string(parsed), at); err != nil {
		return Document{}, err
	}
	doc.SchemaText = text
	doc.SchemaType = string(parsed)
	doc.UpdatedAt = at
	return doc, nil
}

func (s *Service) textDocument(ctx context.Context, id string) (Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if strings.TrimSpace(doc.ExtractedText) == "" {
		return Document{}, ErrNoExtractedText
	}
	return doc, nil
}

// Export renders one of the document's texts to a PDF file.
// The caller must remove ExportFile.Path after serving it.
func (s *Service) Export(ctx context.Context, id, content string) (ExportFile, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return ExportFile{}, err
	}

	var text, title string
	switch strings.ToLower(strings.TrimSpace(content)) {
	case ContentSummary:
		text, title = doc.SummaryText, "Summary - "+doc.FileName
	case ContentSchema:
		text, title = doc.SchemaText, "Schema - "+doc.FileName
	case ContentFull:
		text, title = doc.ExtractedText, "Full Text - "+doc.FileName
	default:
		return ExportFile{}, fmt.Errorf("%w: content_type must be one of summary, schema, full", ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return ExportFile{}, ErrContentUnavailable
	}

	path, err := s.Renderer.RenderFile(text, title)
	if err != nil {
		return ExportFile{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	lossy := s.Renderer.Lossy(title + "\n" + text)
	if lossy {
		telemetry.Warn("document.export.lossy", map[string]any{"document_id": doc.ID, "content_type": content})
	}
	return ExportFile{
		Path:     path,
		FileName: util.AttachmentName(doc.FileName, strings.ToLower(strings.TrimSpace(content)), ".pdf"),
		Title:    title,
		Lossy:    lossy,
	}, nil
}

// WriteCatalog writes the document listing as an XLSX workbook.
func (s *Service) WriteCatalog(ctx context.Context, w io.Writer) error {
	docs, err := s.List(ctx)
	if err != nil {
		return err
	}
	rows := make([]export.CatalogRow, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, export.CatalogRow{
			ID:               d.ID,
			FileName:         d.FileName,
			ContentType:      d.ContentType,
			FileSize:         d.FileSize,
			ExtractionMethod: d.ExtractionMethod,
			TextLength:       len([]rune(d.ExtractedText)),
			HasSummary:       d.HasSummary(),
			HasSchema:        d.HasSchema(),
			CreatedAt:        d.CreatedAt,
		})
	}
	return export.WriteCatalog(w, rows)
}
