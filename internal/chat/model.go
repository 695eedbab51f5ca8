package chat

import (
	"errors"
	"time"
)

// Turn is one persisted chat exchange.
// DocumentID is empty when the turn was not about a stored document.
type Turn struct {
	ID         string
	DocumentID string
	Message    string
	Response   string
	CreatedAt  time.Time
}

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUpstream     = errors.New("upstream failure")
)
