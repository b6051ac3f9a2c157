package domain

import (
	"context"
	"time"
)

// SampleRepository defines operations for storing/retrieving luminance samples
// This is a PORT - adapters (SQLite, Memory) implement it
type SampleRepository interface {
	// Append persists a sample and assigns its ID
	Append(ctx context.Context, sample *LuminanceSample) error

	// Latest retrieves the most recent sample, ErrSampleNotFound when empty
	Latest(ctx context.Context) (*LuminanceSample, error)

	// RangeAverage averages sample values over [start, end).
	// An empty range yields 0, never NaN.
	RangeAverage(ctx context.Context, start, end time.Time) (float64, error)

	// SamplesInRange retrieves samples over [start, end) ordered by time
	SamplesInRange(ctx context.Context, start, end time.Time) ([]*LuminanceSample, error)

	// CountDistinctSources counts tracked surfaces, ignoring UnknownSource
	CountDistinctSources(ctx context.Context) (int, error)

	// DeleteOlderThan removes samples captured before cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error
}

// SavingsStore persists the incremental savings ledger.
type SavingsStore interface {
	// LoadLedger returns the stored ledger, or a fresh one started at now
	LoadLedger(ctx context.Context, now time.Time) (*SavingsLedger, error)

	// SaveLedger replaces the stored ledger
	SaveLedger(ctx context.Context, ledger *SavingsLedger) error
}
