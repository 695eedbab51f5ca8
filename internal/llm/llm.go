package llm

import (
	"context"
	"errors"
)

// Transcriber turns a scanned document or image into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Completer runs a single stateless system+user exchange and returns the raw reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Client is implemented by providers that serve both extraction and generation.
type Client interface {
	Transcriber
	Completer
}

// Fixed instructions for the transcription path.
const (
	TranscriptionSystemPrompt = "You are a document transcription engine. Extract all textual content from the provided file, " +
		"preserving the original structure and reading order: headings, paragraphs, lists, tables and captions. " +
		"Omit nothing and do not add commentary."
	TranscriptionUserPrompt = "Transcribe the complete text of this document, keeping its structure and omitting nothing."
)

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Transcribe returns ErrNotImplemented.
func (PlaceholderClient) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	_ = ctx
	_ = data
	_ = mimeType
	return "", ErrNotImplemented
}

// Complete returns ErrNotImplemented.
func (PlaceholderClient) Complete(ctx context.Context, system, user string) (string, error) {
	_ = ctx
	_ = system
	_ = user
	return "", ErrNotImplemented
}

var _ Client = PlaceholderClient{}
