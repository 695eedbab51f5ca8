package documents

import (
	"time"
	"unicode/utf8"
)

const (
	uploadPreviewRunes = 500
	listPreviewRunes   = 200
)

type generateSummaryRequest struct {
	DocumentID    string `json:"document_id"`
	SummaryType   string `json:"summary_type"`
	AccuracyLevel string `json:"accuracy_level"`
}

type generateSchemaRequest struct {
	DocumentID string `json:"document_id"`
	SchemaType string `json:"schema_type"`
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	ID               string `json:"id"`
	FileName         string `json:"filename"`
	ExtractedText    string `json:"extracted_text"`
	TextLength       int    `json:"text_length"`
	ExtractionMethod string `json:"extraction_method"`
	Message          string `json:"message"`
}

type SummaryResponse struct {
	DocumentID    string `json:"document_id"`
	Summary       string `json:"summary"`
	SummaryType   string `json:"summary_type"`
	AccuracyLevel string `json:"accuracy_level"`
}

type SchemaResponse struct {
	DocumentID string `json:"document_id"`
	Schema     string `json:"schema"`
	SchemaType string `json:"schema_type"`
}

// ListItem is one row of GET /documents.
type ListItem struct {
	ID          string    `json:"id"`
	FileName    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	FileSize    int64     `json:"file_size"`
	HasSummary  bool      `json:"has_summary"`
	HasSchema   bool      `json:"has_schema"`
	CreatedAt   time.Time `json:"created_at"`
	TextPreview *string   `json:"text_preview"`
}

// DocumentResponse is the full record. Absent texts are null.
type DocumentResponse struct {
	ID               string    `json:"id"`
	FileName         string    `json:"filename"`
	ContentType      string    `json:"content_type"`
	FileSize         int64     `json:"file_size"`
	Checksum         string    `json:"checksum"`
	ExtractionMethod string    `json:"extraction_method"`
	ExtractedText    *string   `json:"extracted_text"`
	SummaryText      *string   `json:"summary_text"`
	SummaryType      *string   `json:"summary_type"`
	MindmapSchema    *string   `json:"mindmap_schema"`
	SchemaType       *string   `json:"schema_type"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toUploadResponse(doc Document) UploadResponse {
	return UploadResponse{
		ID:               doc.ID,
		FileName:         doc.FileName,
		ExtractedText:    preview(doc.ExtractedText, uploadPreviewRunes),
		TextLength:       utf8.RuneCountInString(doc.ExtractedText),
		ExtractionMethod: doc.ExtractionMethod,
		Message:          "Document uploaded and processed successfully.",
	}
}

func toListItem(doc Document) ListItem {
	item := ListItem{
		ID:          doc.ID,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		FileSize:    doc.FileSize,
		HasSummary:  doc.HasSummary(),
		HasSchema:   doc.HasSchema(),
		CreatedAt:   doc.CreatedAt,
	}
	if doc.ExtractedText != "" {
		p := preview(doc.ExtractedText, listPreviewRunes)
		item.TextPreview = &p
	}
	return item
}

func toDocumentResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:               doc.ID,
		FileName:         doc.FileName,
		ContentType:      doc.ContentType,
		FileSize:         doc.FileSize,
		Checksum:         doc.Checksum,
		ExtractionMethod: doc.ExtractionMethod,
		ExtractedText:    optional(doc.ExtractedText),
		SummaryText:      optional(doc.SummaryText),
		SummaryType:      optional(doc.SummaryType),
		MindmapSchema:    optional(doc.SchemaText),
		SchemaType:       optional(doc.SchemaType),
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

// preview cuts s to n runes, appending "..." only when something was cut.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
