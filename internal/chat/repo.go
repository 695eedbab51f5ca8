package chat

import (
	"context"
	"sync"
)

// Repo persists chat turns. Turns are write-only from the API.
type Repo interface {
	Create(ctx context.Context, turn Turn) error
}

// MemoryRepo keeps turns in process memory.
type MemoryRepo struct {
	mu    sync.Mutex
	turns []Turn
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Create(ctx context.Context, turn Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, turn)
	return nil
}

// Turns returns a copy of the stored turns in insertion order.
func (r *MemoryRepo) Turns() []Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Turn, len(r.turns))
	copy(out, r.turns)
	return out
}
