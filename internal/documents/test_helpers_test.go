package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"

	"docbrains-backend/internal/enrich"
	"docbrains-backend/internal/export"
	"docbrains-backend/internal/extract"
)

const digitalText = "Quarterly operations report covering revenue, staffing and the delivery roadmap."

// fakeModel records which remote operations ran.
type fakeModel struct {
	mu          sync.Mutex
	transcribes int
	completes   int
	transcript  string
	reply       string
	err         error
}

func (f *fakeModel) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcribes++
	return f.transcript, f.err
}

func (f *fakeModel) Complete(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completes++
	return f.reply, f.err
}

func (f *fakeModel) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transcribes, f.completes
}

type testEnv struct {
	router *gin.Engine
	svc    *Service
	repo   *MemoryRepo
	model  *fakeModel
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	model := &fakeModel{transcript: "Transcribed page text", reply: "generated text"}
	gen, err := enrich.NewGenerator(model)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	repo := NewMemoryRepo()
	svc := &Service{
		Repo:      repo,
		Extractor: extract.New(model, extract.DefaultMinTextLength),
		Generator: gen,
		Renderer:  export.NewRenderer(t.TempDir()),
	}

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return &testEnv{router: r, svc: svc, repo: repo, model: model}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(t *testing.T, fileName, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.do(req)
}

func (e *testEnv) postJSON(t *testing.T, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeMap(t, rec)
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func digitalPDF(t *testing.T, lines ...string) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	for i, line := range lines {
		doc.Text(72, 72+float64(i)*16, line)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	return buf.Bytes()
}

func scannedPDF(t *testing.T) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetCompression(false)
	doc.AddPage()
	doc.Rect(72, 72, 200, 300, "F")
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	return buf.Bytes()
}

func pngBytes() []byte {
	// Signature plus padding is enough for content sniffing.
	return append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
}

func seedDocument(t *testing.T, repo *MemoryRepo, doc Document) {
	t.Helper()
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func hasPrefix(b []byte, prefix string) bool {
	return strings.HasPrefix(string(b), prefix)
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}
