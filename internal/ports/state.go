package ports

import (
	"sync"

	"github.com/quentinrf/darkwatt/internal/domain"
)

// Snapshot is the latest known state of the loop. Sample is nil until the
// first successful cycle.
type Snapshot struct {
	Sample            *domain.LuminanceSample
	Surface           Surface
	Payload           ImagePayload
	Savings           domain.SavingsSummary
	TotalTrackedSites int
	CPUUsage          *float64
}

// StateReader gives transports read access to the loop state.
type StateReader interface {
	Snapshot() Snapshot
}

// State is a best-effort cache of the most recent observation. It is
// updated even when persisting the sample fails.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewState returns an empty state.
func NewState() *State {
	return &State{}
}

// Snapshot implements StateReader.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *State) setObservation(sample *domain.LuminanceSample, obs *Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cached := *sample
	s.snap.Sample = &cached
	s.snap.Surface = obs.Surface
	s.snap.Payload = obs.Payload
}

func (s *State) setTrackedSites(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.TotalTrackedSites = n
}

func (s *State) setSavings(summary domain.SavingsSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Savings = summary
}

func (s *State) setCPU(pct float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.CPUUsage = &pct
}
