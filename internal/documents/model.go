package documents

import "time"

// Document is one uploaded file and everything derived from it.
// Empty text fields mean "not generated yet".
type Document struct {
	ID               string
	FileName         string
	ContentType      string
	FileSize         int64
	Checksum         string
	StorageKey       string
	ExtractedText    string
	ExtractionMethod string
	SummaryText      string
	SummaryType      string
	SchemaText       string
	SchemaType       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasSummary reports whether a summary has been generated.
func (d Document) HasSummary() bool { return d.SummaryText != "" }

// HasSchema reports whether a schema has been generated.
func (d Document) HasSchema() bool { return d.SchemaText != "" }
