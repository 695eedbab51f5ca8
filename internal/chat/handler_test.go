package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"docbrains-backend/internal/documents"
	"docbrains-backend/internal/enrich"
)

type recordingReplier struct {
	calls int
	last  enrich.ChatInput
	reply string
	err   error
}

func (r *recordingReplier) ChatReply(_ context.Context, in enrich.ChatInput) (string, error) {
	r.calls++
	r.last = in
	return r.reply, r.err
}

type chatEnv struct {
	router  *gin.Engine
	repo    *MemoryRepo
	replier *recordingReplier
}

func newChatEnv(t *testing.T) *chatEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	docRepo := documents.NewMemoryRepo()
	if err := docRepo.Create(context.Background(), documents.Document{ID: "doc-1", FileName: "a.pdf", ExtractedText: "contract terms"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repo := NewMemoryRepo()
	replier := &recordingReplier{reply: "an answer"}
	svc := &Service{
		Repo:      repo,
		Documents: &documents.Service{Repo: docRepo},
		Replier:   replier,
	}

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return &chatEnv{router: r, repo: repo, replier: replier}
}

func (e *chatEnv) post(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestChatWithDocumentContext(t *testing.T) {
	env := newChatEnv(t)

	rec := env.post(`{"document_id":"doc-1","message":"What are the terms?","context":"focus on dates"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != "an answer" || resp.Message != "What are the terms?" || resp.ChatID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if env.replier.last.DocumentText != "contract terms" || env.replier.last.Context != "focus on dates" {
		t.Fatalf("unexpected generator input: %+v", env.replier.last)
	}

	turns := env.repo.Turns()
	if len(turns) != 1 || turns[0].ID != resp.ChatID || turns[0].DocumentID != "doc-1" {
		t.Fatalf("unexpected stored turns: %+v", turns)
	}
}

func TestChatUnknownDocumentHasNoContext(t *testing.T) {
	env := newChatEnv(t)

	rec := env.post(`{"document_id":"missing","message":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.replier.last.DocumentText != "" {
		t.Fatalf("expected no document context, got %q", env.replier.last.DocumentText)
	}
	if turns := env.repo.Turns(); len(turns) != 1 || turns[0].DocumentID != "" {
		t.Fatalf("expected one unlinked turn, got %+v", turns)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	env := newChatEnv(t)

	for _, body := range []string{`{"message":"   "}`, `{}`, `not json`} {
		rec := env.post(body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
	if env.replier.calls != 0 {
		t.Fatalf("expected no generator calls, got %d", env.replier.calls)
	}
}

func TestChatRemoteFailureStoresNothing(t *testing.T) {
	env := newChatEnv(t)
	env.replier.err = errors.New("model unavailable")

	rec := env.post(`{"message":"hello"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "model unavailable") {
		t.Fatalf("expected underlying message in body, got %s", rec.Body.String())
	}
	if turns := env.repo.Turns(); len(turns) != 0 {
		t.Fatalf("expected no stored turns, got %d", len(turns))
	}
}

func TestChatNonUUIDDocumentOnPostgres(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewMemoryRepo()
	replier := &recordingReplier{reply: "an answer"}
	svc := &Service{
		Repo:      repo,
		Documents: &documents.Service{Repo: &documents.PGRepo{DB: db}},
		Replier:   replier,
	}
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"document_id":"abc","message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if replier.last.DocumentText != "" {
		t.Fatalf("expected no document context, got %q", replier.last.DocumentText)
	}
	if turns := repo.Turns(); len(turns) != 1 || turns[0].DocumentID != "" {
		t.Fatalf("expected one unlinked turn, got %+v", turns)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
