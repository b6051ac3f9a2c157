package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/quentinrf/darkwatt/internal/domain"
)

// SavingsStore keeps the savings ledger in memory.
type SavingsStore struct {
	mu     sync.Mutex
	ledger *domain.SavingsLedger
}

// NewSavingsStore creates an empty store
func NewSavingsStore() *SavingsStore {
	return &SavingsStore{}
}

// LoadLedger returns a copy of the stored ledger, or a fresh one started at now
func (s *SavingsStore) LoadLedger(ctx context.Context, now time.Time) (*domain.SavingsLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ledger == nil {
		return domain.NewSavingsLedger(now), nil
	}
	return cloneLedger(s.ledger), nil
}

// SaveLedger stores a copy of ledger
func (s *SavingsStore) SaveLedger(ctx context.Context, ledger *domain.SavingsLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger = cloneLedger(ledger)
	return nil
}

func cloneLedger(l *domain.SavingsLedger) *domain.SavingsLedger {
	out := *l
	out.Sites = maps.Clone(l.Sites)
	if out.Sites == nil {
		out.Sites = make(map[string]float64)
	}
	return &out
}
