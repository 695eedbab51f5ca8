package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Outcome classifies a local parse.
type Outcome int

const (
	// Recovered means the text layer yielded enough text to use.
	Recovered Outcome = iota + 1
	// Insufficient means the parse worked but found too little text, typical of scans.
	Insufficient
	// Failed means the parser could not read the file at all.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Recovered:
		return "recovered"
	case Insufficient:
		return "insufficient"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultMinTextLength is the rune count below which a text layer counts as missing.
const DefaultMinTextLength = 50

// LocalResult is the outcome of reading a PDF text layer.
type LocalResult struct {
	Text    string
	Outcome Outcome
	Pages   int
	Err     error
}

// ParseLocal reads every page's text layer and joins pages with newlines.
// It never panics; parser panics are reported as Failed.
func ParseLocal(data []byte, minTextLength int) (res LocalResult) {
	if minTextLength <= 0 {
		minTextLength = DefaultMinTextLength
	}
	defer func() {
		if rec := recover(); rec != nil {
			res = LocalResult{Outcome: Failed, Err: fmt.Errorf("pdf parser panic: %v", rec)}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return LocalResult{Outcome: Failed, Err: err}
	}

	pages := r.NumPage()
	texts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return LocalResult{Outcome: Failed, Pages: pages, Err: fmt.Errorf("page %d: %w", i, err)}
		}
		texts = append(texts, text)
	}

	text := strings.TrimSpace(strings.Join(texts, "\n"))
	if utf8.RuneCountInString(text) < minTextLength {
		return LocalResult{Text: text, Outcome: Insufficient, Pages: pages}
	}
	return LocalResult{Text: text, Outcome: Recovered, Pages: pages}
}
