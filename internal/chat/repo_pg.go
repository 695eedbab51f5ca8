package chat

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a chat turn.
func (r *PGRepo) Create(ctx context.Context, turn Turn) error {
	const query = `
INSERT INTO chat_messages (
    id,
    document_id,
    message,
    response,
    created_at
) VALUES ($1, $2, $3, $4, $5)`

	var documentID sql.NullString
	if turn.DocumentID != "" {
		documentID = sql.NullString{String: turn.DocumentID, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, turn.ID, documentID, turn.Message, turn.Response, turn.CreatedAt)
	return err
}
