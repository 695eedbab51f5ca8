package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docbrains-backend/internal/llm"
	"docbrains-backend/internal/shared/metrics"
	"docbrains-backend/internal/shared/telemetry"
)

// Extraction methods recorded on documents.
const (
	MethodPDFText             = "pdf-text"
	MethodRemoteTranscription = "remote-transcription"
)

// ErrRemote wraps failures of the remote transcription call.
var ErrRemote = errors.New("remote transcription failed")

// Result is the text recovered from an upload.
type Result struct {
	Text   string
	Method string
	Pages  int
}

// Extractor turns uploaded bytes into text.
type Extractor struct {
	Remote        llm.Transcriber
	MinTextLength int
}

// New returns an Extractor using remote for scans and images.
func New(remote llm.Transcriber, minTextLength int) *Extractor {
	if minTextLength <= 0 {
		minTextLength = DefaultMinTextLength
	}
	return &Extractor{Remote: remote, MinTextLength: minTextLength}
}

// Extract applies the strategy for contentType to data.
// The remote path always receives the original bytes, never a partial parse.
func (e *Extractor) Extract(ctx context.Context, data []byte, contentType string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	strategy, err := StrategyFor(contentType)
	if err != nil {
		return Result{}, err
	}
	mimeType := NormalizeContentType(contentType)

	if strategy == PreferLocalWithRemoteFallback {
		start := time.Now()
		local := ParseLocal(data, e.MinTextLength)
		fields := map[string]any{
			"outcome":     local.Outcome.String(),
			"pages":       local.Pages,
			"chars":       len(local.Text),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if local.Err != nil {
			fields["error"] = local.Err
		}
		telemetry.Info("extract.local", fields)

		if local.Outcome == Recovered {
			metrics.IncExtractionLocal()
			return Result{Text: local.Text, Method: MethodPDFText, Pages: local.Pages}, nil
		}
	}

	return e.transcribe(ctx, data, mimeType, strategy)
}

func (e *Extractor) transcribe(ctx context.Context, data []byte, mimeType string, strategy Strategy) (Result, error) {
	if e.Remote == nil {
		metrics.IncExtractionFailed()
		return Result{}, fmt.Errorf("%w: no transcriber configured", ErrRemote)
	}

	start := time.Now()
	text, err := e.Remote.Transcribe(ctx, data, mimeType)
	fields := map[string]any{
		"strategy":    strategy.String(),
		"mime_type":   mimeType,
		"bytes":       len(data),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		telemetry.Error("extract.remote.failed", fields)
		metrics.IncExtractionFailed()
		return Result{}, fmt.Errorf("%w: %w", ErrRemote, err)
	}
	fields["chars"] = len(text)
	telemetry.Info("extract.remote", fields)
	metrics.IncExtractionRemote()
	return Result{Text: text, Method: MethodRemoteTranscription}, nil
}
