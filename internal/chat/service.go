package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docbrains-backend/internal/documents"
	"docbrains-backend/internal/enrich"
	"docbrains-backend/internal/shared/metrics"
	"docbrains-backend/internal/shared/telemetry"
)

// DocumentLookup resolves the document a chat message refers to.
type DocumentLookup interface {
	Get(ctx context.Context, id string) (documents.Document, error)
}

// Replier produces a chat answer.
type Replier interface {
	ChatReply(ctx context.Context, in enrich.ChatInput) (string, error)
}

// Request is one incoming chat message.
type Request struct {
	DocumentID string
	Message    string
	Context    string
}

// Service answers chat messages and records every exchange.
type Service struct {
	Repo      Repo
	Documents DocumentLookup
	Replier   Replier
	Now       func() time.Time
}

// Reply answers req. An unknown document id is not an error: the reply is
// produced without document context and the turn is stored unlinked.
func (s *Service) Reply(ctx context.Context, req Request) (Turn, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Turn{}, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	in := enrich.ChatInput{Message: req.Message, Context: req.Context}
	var linkedID string
	if id := strings.TrimSpace(req.DocumentID); id != "" && s.Documents != nil {
		doc, err := s.Documents.Get(ctx, id)
		switch {
		case err == nil:
			in.DocumentText = doc.ExtractedText
			linkedID = doc.ID
		case errors.Is(err, documents.ErrNotFound):
			telemetry.Warn("chat.document.missing", map[string]any{"document_id": id})
		default:
			return Turn{}, fmt.Errorf("load document: %w", err)
		}
	}

	response, err := s.Replier.ChatReply(ctx, in)
	if err != nil {
		return Turn{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	turn := Turn{
		ID:         uuid.NewString(),
		DocumentID: linkedID,
		Message:    req.Message,
		Response:   response,
		CreatedAt:  s.now(),
	}
	if err := s.Repo.Create(ctx, turn); err != nil {
		return Turn{}, fmt.Errorf("store chat turn: %w", err)
	}

	metrics.IncChatTurn()
	telemetry.Info("chat.turn", map[string]any{
		"chat_id":      turn.ID,
		"document_id":  turn.DocumentID,
		"has_context":  req.Context != "",
		"reply_length": len(response),
	})
	return turn, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
