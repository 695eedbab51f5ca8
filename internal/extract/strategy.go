package extract

import (
	"errors"
	"strings"
)

// ErrUnsupportedType is returned for content types the pipeline does not accept.
var ErrUnsupportedType = errors.New("unsupported content type")

// Strategy is the extraction policy chosen for a content type.
type Strategy int

const (
	// PreferLocalWithRemoteFallback parses the text layer and transcribes remotely when it is insufficient.
	PreferLocalWithRemoteFallback Strategy = iota + 1
	// RemoteOnly always transcribes remotely.
	RemoteOnly
)

func (s Strategy) String() string {
	switch s {
	case PreferLocalWithRemoteFallback:
		return "prefer-local"
	case RemoteOnly:
		return "remote-only"
	default:
		return "unknown"
	}
}

const mimePDF = "application/pdf"

// StrategyFor maps a declared content type to its extraction strategy.
func StrategyFor(contentType string) (Strategy, error) {
	switch ct := NormalizeContentType(contentType); {
	case ct == mimePDF:
		return PreferLocalWithRemoteFallback, nil
	case strings.HasPrefix(ct, "image/"):
		return RemoteOnly, nil
	default:
		return 0, ErrUnsupportedType
	}
}

// NormalizeContentType lowercases a media type and drops its parameters.
func NormalizeContentType(contentType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
}
