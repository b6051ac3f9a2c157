package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/quentinrf/darkwatt/internal/domain"
)

// SampleRepository implements domain.SampleRepository with SQLite.
// Timestamps are stored as unix nanoseconds so range bounds compare exactly.
type SampleRepository struct {
	db *DB
}

type sampleRow struct {
	ID     int64   `db:"id"`
	Value  float64 `db:"value"`
	Source string  `db:"source"`
	TS     int64   `db:"ts"`
}

func (r sampleRow) toDomain() *domain.LuminanceSample {
	return &domain.LuminanceSample{
		ID:        r.ID,
		Value:     r.Value,
		Source:    r.Source,
		Timestamp: time.Unix(0, r.TS).UTC(),
	}
}

// NewSampleRepository creates a SQLite-backed repository
func NewSampleRepository(db *DB) *SampleRepository {
	return &SampleRepository{db: db}
}

// Append stores a sample in SQLite
func (r *SampleRepository) Append(ctx context.Context, sample *domain.LuminanceSample) error {
	query := `INSERT INTO luminance_samples (value, source, ts) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, sample.Value, sample.Source, sample.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert id: %w", err)
	}

	sample.ID = id
	return nil
}

// Latest returns the most recent sample
func (r *SampleRepository) Latest(ctx context.Context) (*domain.LuminanceSample, error) {
	query := `
		SELECT id, value, source, ts
		FROM luminance_samples
		ORDER BY ts DESC, id DESC
		LIMIT 1
	`

	var row sampleRow
	err := r.db.GetContext(ctx, &row, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSampleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest sample: %w", err)
	}

	return row.toDomain(), nil
}

// RangeAverage averages values over [start, end)
func (r *SampleRepository) RangeAverage(ctx context.Context, start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, domain.ErrInvalidRange
	}
	query := `SELECT COALESCE(AVG(value), 0) FROM luminance_samples WHERE ts >= ? AND ts < ?`

	var avg float64
	if err := r.db.GetContext(ctx, &avg, query, start.UnixNano(), end.UnixNano()); err != nil {
		return 0, fmt.Errorf("failed to average samples: %w", err)
	}
	return avg, nil
}

// SamplesInRange returns samples within [start, end) ordered by time
func (r *SampleRepository) SamplesInRange(ctx context.Context, start, end time.Time) ([]*domain.LuminanceSample, error) {
	if end.Before(start) {
		return nil, domain.ErrInvalidRange
	}
	query := `
		SELECT id, value, source, ts
		FROM luminance_samples
		WHERE ts >= ? AND ts < ?
		ORDER BY ts ASC, id ASC
	`

	var rows []sampleRow
	if err := r.db.SelectContext(ctx, &rows, query, start.UnixNano(), end.UnixNano()); err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}

	samples := make([]*domain.LuminanceSample, 0, len(rows))
	for _, row := range rows {
		samples = append(samples, row.toDomain())
	}
	return samples, nil
}

// CountDistinctSources counts identities, ignoring the unknown-source sentinel
func (r *SampleRepository) CountDistinctSources(ctx context.Context) (int, error) {
	query := `SELECT COUNT(DISTINCT source) FROM luminance_samples WHERE source != ?`

	var n int
	if err := r.db.GetContext(ctx, &n, query, domain.UnknownSource); err != nil {
		return 0, fmt.Errorf("failed to count sources: %w", err)
	}
	return n, nil
}

// DeleteOlderThan removes samples captured before cutoff
func (r *SampleRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	query := `DELETE FROM luminance_samples WHERE ts < ?`

	if _, err := r.db.ExecContext(ctx, query, cutoff.UnixNano()); err != nil {
		return fmt.Errorf("failed to delete old samples: %w", err)
	}
	return nil
}
