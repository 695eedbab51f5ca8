package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docbrains-backend/internal/llm"
	"docbrains-backend/internal/shared/metrics"
	"docbrains-backend/internal/shared/telemetry"
)

// DocumentContextRunes is how much of a document's text is given to chat replies.
const DocumentContextRunes = 2000

// ChatInput is one conversational turn.
type ChatInput struct {
	Message      string
	DocumentText string
	Context      string
}

// Generator builds instructions from templates and asks the model for derived text.
// Each call is a single stateless exchange; output is returned unmodified.
type Generator struct {
	llm     llm.Completer
	prompts *Prompts
}

// NewGenerator loads the embedded templates.
func NewGenerator(completer llm.Completer) (*Generator, error) {
	prompts, err := LoadPrompts()
	if err != nil {
		return nil, err
	}
	return &Generator{llm: completer, prompts: prompts}, nil
}

// Summary generates a summary of text.
func (g *Generator) Summary(ctx context.Context, text string, opts SummaryOptions) (string, error) {
	length := ParseLength(string(opts.Length))
	accuracy := ParseAccuracy(string(opts.Accuracy))
	system := fill(g.prompts.Summary.System,
		"length", g.prompts.Summary.Length[string(length)],
		"accuracy", g.prompts.Summary.Accuracy[string(accuracy)],
	)
	user := fill(g.prompts.Summary.User, "text", text)
	return g.run(ctx, "summary", string(length)+"/"+string(accuracy), system, user)
}

// Schema generates a mind map or flow chart of text.
func (g *Generator) Schema(ctx context.Context, text string, style SchemaStyle) (string, error) {
	style = ParseSchemaStyle(string(style))
	system := fill(g.prompts.Schema.System, "style", g.prompts.Schema.Styles[string(style)])
	user := fill(g.prompts.Schema.User, "style_name", string(style), "text", text)
	return g.run(ctx, "schema", string(style), system, user)
}

// ChatReply answers a message, optionally grounded in a document and caller context.
func (g *Generator) ChatReply(ctx context.Context, in ChatInput) (string, error) {
	var system strings.Builder
	system.WriteString(g.prompts.Chat.System)
	if in.DocumentText != "" {
		system.WriteString(fill(g.prompts.Chat.DocumentContext, "context", truncateRunes(in.DocumentText, DocumentContextRunes)))
	}
	if in.Context != "" {
		system.WriteString(fill(g.prompts.Chat.ExtraContext, "context", in.Context))
	}
	return g.run(ctx, "chat", "", system.String(), in.Message)
}

func (g *Generator) run(ctx context.Context, kind, variant, system, user string) (string, error) {
	if g.llm == nil {
		return "", fmt.Errorf("generate %s: %w", kind, llm.ErrNotImplemented)
	}
	start := time.Now()
	out, err := g.llm.Complete(ctx, system, user)
	fields := map[string]any{
		"kind":        kind,
		"variant":     variant,
		"input_chars": len(user),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		telemetry.Error("generate.failed", fields)
		metrics.IncGenerationFailed()
		return "", fmt.Errorf("generate %s: %w", kind, err)
	}
	fields["output_chars"] = len(out)
	telemetry.Info("generate.complete", fields)
	metrics.IncGeneration()
	return out, nil
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
