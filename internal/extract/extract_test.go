package extract

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscriber struct {
	mu    sync.Mutex
	calls int
	data  []byte
	mime  string
	reply string
	err   error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, data []byte, mimeType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.data = data
	f.mime = mimeType
	return f.reply, f.err
}

func textPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		doc.Text(72, 72, text)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func scannedPDF(t *testing.T) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetCompression(false)
	doc.AddPage()
	doc.Rect(72, 72, 200, 300, "F")
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestStrategyFor(t *testing.T) {
	cases := []struct {
		contentType string
		want        Strategy
		wantErr     bool
	}{
		{contentType: "application/pdf", want: PreferLocalWithRemoteFallback},
		{contentType: "Application/PDF; charset=binary", want: PreferLocalWithRemoteFallback},
		{contentType: "image/png", want: RemoteOnly},
		{contentType: "image/jpeg", want: RemoteOnly},
		{contentType: "text/plain", wantErr: true},
		{contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", wantErr: true},
		{contentType: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := StrategyFor(tc.contentType)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedType, tc.contentType)
			continue
		}
		require.NoError(t, err, tc.contentType)
		assert.Equal(t, tc.want, got, tc.contentType)
	}
}

func TestParseLocalRecoversTextLayer(t *testing.T) {
	first := "Quarterly report covering revenue, costs and outlook for the region."
	second := "Appendix with supporting tables."
	res := ParseLocal(textPDF(t, first, second), DefaultMinTextLength)

	require.Equal(t, Recovered, res.Outcome, "err=%v", res.Err)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "Quarterly report")
	assert.Contains(t, res.Text, "Appendix")
	assert.GreaterOrEqual(t, len(res.Text), len(first)+len(second))
}

func TestParseLocalInsufficientForScans(t *testing.T) {
	res := ParseLocal(scannedPDF(t), DefaultMinTextLength)
	assert.Equal(t, Insufficient, res.Outcome)
	assert.Empty(t, res.Text)
}

func TestParseLocalShortTextIsInsufficient(t *testing.T) {
	res := ParseLocal(textPDF(t, "Too short"), DefaultMinTextLength)
	assert.Equal(t, Insufficient, res.Outcome)
	assert.Contains(t, res.Text, "Too short")
}

func TestParseLocalGarbageFails(t *testing.T) {
	res := ParseLocal([]byte("definitely not a pdf"), DefaultMinTextLength)
	assert.Equal(t, Failed, res.Outcome)
	assert.Error(t, res.Err)
}

func TestExtractDigitalPDFStaysLocal(t *testing.T) {
	remote := &fakeTranscriber{reply: "remote"}
	ex := New(remote, 0)

	res, err := ex.Extract(context.Background(), textPDF(t, strings.Repeat("Searchable digital text. ", 4)), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, MethodPDFText, res.Method)
	assert.Equal(t, 0, remote.calls)
}

func TestExtractScannedPDFFallsBackWithOriginalBytes(t *testing.T) {
	remote := &fakeTranscriber{reply: "TRANSCRIBED"}
	ex := New(remote, 0)
	data := scannedPDF(t)

	res, err := ex.Extract(context.Background(), data, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, MethodRemoteTranscription, res.Method)
	assert.Equal(t, "TRANSCRIBED", res.Text)
	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, data, remote.data)
	assert.Equal(t, "application/pdf", remote.mime)
}

func TestExtractUnreadablePDFFallsBack(t *testing.T) {
	remote := &fakeTranscriber{reply: "ok"}
	res, err := New(remote, 0).Extract(context.Background(), []byte("%PDF-broken"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, MethodRemoteTranscription, res.Method)
	assert.Equal(t, 1, remote.calls)
}

func TestExtractImageAlwaysRemote(t *testing.T) {
	remote := &fakeTranscriber{reply: ""}
	res, err := New(remote, 0).Extract(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/PNG")
	require.NoError(t, err)
	assert.Equal(t, MethodRemoteTranscription, res.Method)
	assert.Equal(t, "image/png", remote.mime)
	assert.Equal(t, "", res.Text)
}

func TestExtractUnsupportedNeverCallsRemote(t *testing.T) {
	remote := &fakeTranscriber{}
	_, err := New(remote, 0).Extract(context.Background(), textPDF(t, strings.Repeat("x", 80)), "text/plain")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Equal(t, 0, remote.calls)
}

func TestExtractRemoteFailureWrapsErrRemote(t *testing.T) {
	cause := errors.New("upstream 503")
	remote := &fakeTranscriber{err: cause}
	_, err := New(remote, 0).Extract(context.Background(), []byte("img"), "image/jpeg")
	assert.ErrorIs(t, err, ErrRemote)
	assert.ErrorIs(t, err, cause)
}
