package implementation

import (
	"context"
	"sync"

	"heystack-be/internal/repository/contract"
	"heystack-be/pkg/store"
)

// MemorySessionBackend keeps saved sessions in process memory.
// Nothing survives a restart.
type MemorySessionBackend struct {
	mu       sync.Mutex
	sessions map[string]*store.Session
	saves    int
}

func NewMemorySessionBackend() *MemorySessionBackend {
	return &MemorySessionBackend{sessions: map[string]*store.Session{}}
}

var _ contract.SessionBackend = (*MemorySessionBackend)(nil)

func (b *MemorySessionBackend) Load(context.Context) (map[string]*store.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copySessions(b.sessions), nil
}

func (b *MemorySessionBackend) Save(_ context.Context, sessions map[string]*store.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, v := range sessions {
		b.sessions[k] = v.Clone()
	}
	b.saves++
	return nil
}

// Saves reports how many times Save was called
func (b *MemorySessionBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

func (b *MemorySessionBackend) Close() error { return nil }

func copySessions(in map[string]*store.Session) map[string]*store.Session {
	out := make(map[string]*store.Session, len(in))
	for k, v := range in {
		out[k] = v.Clone()
	}
	return out
}
