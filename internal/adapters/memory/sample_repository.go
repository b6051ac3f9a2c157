package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quentinrf/darkwatt/internal/domain"
)

// SampleRepository implements domain.SampleRepository with in-memory storage
// This is perfect for development - no database setup needed
type SampleRepository struct {
	mu      sync.RWMutex
	samples []*domain.LuminanceSample
	nextID  int64
}

// NewSampleRepository creates an empty in-memory repository
func NewSampleRepository() *SampleRepository {
	return &SampleRepository{nextID: 1}
}

// Append stores a copy of the sample and assigns its ID
func (r *SampleRepository) Append(ctx context.Context, sample *domain.LuminanceSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sample.ID = r.nextID
	r.nextID++

	stored := *sample
	r.samples = append(r.samples, &stored)
	return nil
}

// Latest returns the most recent sample; the last appended one wins ties
func (r *SampleRepository) Latest(ctx context.Context) (*domain.LuminanceSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.LuminanceSample
	for _, s := range r.samples {
		if latest == nil || !s.Timestamp.Before(latest.Timestamp) {
			latest = s
		}
	}
	if latest == nil {
		return nil, domain.ErrSampleNotFound
	}

	out := *latest
	return &out, nil
}

// RangeAverage averages values over [start, end)
func (r *SampleRepository) RangeAverage(ctx context.Context, start, end time.Time) (float64, error) {
	samples, err := r.SamplesInRange(ctx, start, end)
	if err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return 0, nil
	}

	var sum float64
	for _, s := range samples {
		sum += s.Value
	}
	return sum / float64(len(samples)), nil
}

// SamplesInRange returns samples within [start, end) sorted by timestamp
func (r *SampleRepository) SamplesInRange(ctx context.Context, start, end time.Time) ([]*domain.LuminanceSample, error) {
	if end.Before(start) {
		return nil, domain.ErrInvalidRange
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*domain.LuminanceSample
	for _, s := range r.samples {
		if !s.Timestamp.Before(start) && s.Timestamp.Before(end) {
			out := *s
			results = append(results, &out)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.Before(results[j].Timestamp)
	})

	return results, nil
}

// CountDistinctSources counts identities, ignoring the unknown-source sentinel
func (r *SampleRepository) CountDistinctSources(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, s := range r.samples {
		if s.Source == domain.UnknownSource {
			continue
		}
		seen[s.Source] = struct{}{}
	}
	return len(seen), nil
}

// DeleteOlderThan removes samples captured before cutoff
func (r *SampleRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.samples[:0]
	for _, s := range r.samples {
		if !s.Timestamp.Before(cutoff) {
			kept = append(kept, s)
		}
	}
	for i := len(kept); i < len(r.samples); i++ {
		r.samples[i] = nil
	}
	r.samples = kept

	return nil
}
