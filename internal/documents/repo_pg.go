package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, file_name, content_type, file_size, checksum, storage_key, extracted_text, extraction_method,
       summary_text, summary_type, schema_text, schema_type, created_at, updated_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    file_name,
    content_type,
    file_size,
    checksum,
    storage_key,
    extracted_text,
    extraction_method,
    summary_text,
    summary_type,
    schema_text,
    schema_type,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.FileName,
		doc.ContentType,
		doc.FileSize,
		doc.Checksum,
		doc.StorageKey,
		nullString(doc.ExtractedText),
		doc.ExtractionMethod,
		nullString(doc.SummaryText),
		nullString(doc.SummaryType),
		nullString(doc.SchemaText),
		nullString(doc.SchemaType),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if !validID(id) {
		return Document{}, ErrNotFound
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// List returns documents newest first.
func (r *PGRepo) List(ctx context.Context, limit int) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at DESC LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdateSummary overwrites summary_text, summary_type and updated_at.
func (r *PGRepo) UpdateSummary(ctx context.Context, id, text, variant string, at time.Time) error {
	const query = `
UPDATE documents
SET summary_text = $1, summary_type = $2, updated_at = $3
WHERE id = $4`
	if !validID(id) {
		return ErrNotFound
	}
	return r.execOne(ctx, query, text, variant, at, id)
}

// UpdateSchema overwrites schema_text, schema_type and updated_at.
func (r *PGRepo) UpdateSchema(ctx context.Context, id, text, variant string, at time.Time) error {
	const query = `
UPDATE documents
SET schema_text = $1, schema_type = $2, updated_at = $3
WHERE id = $4`
	if !validID(id) {
		return ErrNotFound
	}
	return r.execOne(ctx, query, text, variant, at, id)
}

// Delete removes a document row.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	return r.execOne(ctx, `DELETE FROM documents WHERE id = $1`, id)
}

// validID reports whether id fits the UUID primary key; anything else cannot exist.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *PGRepo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var extracted, summary, summaryType, schema, schemaType sql.NullString
	if err := row.Scan(
		&doc.ID,
		&doc.FileName,
		&doc.ContentType,
		&doc.FileSize,
		&doc.Checksum,
		&doc.StorageKey,
		&extracted,
		&doc.ExtractionMethod,
		&summary,
		&summaryType,
		&schema,
		&schemaType,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return Document{}, err
	}
	doc.ExtractedText = extracted.String
	doc.SummaryText = summary.String
	doc.SummaryType = summaryType.String
	doc.SchemaText = schema.String
	doc.SchemaType = schemaType.String
	return doc, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
