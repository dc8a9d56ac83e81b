package scheduler

import (
	"context"
	"sync"
)

// Guard marks a campaign as in flight. TryAcquire returns false when another
// tick already holds id.
type Guard interface {
	TryAcquire(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

// MemoryGuard is a process-local Guard.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]struct{})}
}

func (g *MemoryGuard) TryAcquire(_ context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[id]; ok {
		return false, nil
	}
	g.held[id] = struct{}{}
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, id string) error {
	g.mu.Lock()
	delete(g.held, id)
	g.mu.Unlock()
	return nil
}
