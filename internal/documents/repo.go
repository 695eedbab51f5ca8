package documents

import (
	"context"
	"time"
)

// MaxListLimit caps how many documents a listing returns.
const MaxListLimit = 1000

// Repo defines persistence operations for documents.
// Updates and deletes of an unknown id return ErrNotFound.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	List(ctx context.Context, limit int) ([]Document, error)
	UpdateSummary(ctx context.Context, id, text, variant string, at time.Time) error
	UpdateSchema(ctx context.Context, id, text, variant string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
