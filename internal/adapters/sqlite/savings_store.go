package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/quentinrf/darkwatt/internal/domain"
)

// SavingsStore persists the savings ledger in two tables: a single ledger
// row and one row per source.
type SavingsStore struct {
	db *DB
}

type ledgerRow struct {
	TodayWh      float64 `db:"today_wh"`
	TodayResetAt int64   `db:"today_reset_at"`
	WeekWh       float64 `db:"week_wh"`
	WeekResetAt  int64   `db:"week_reset_at"`
	TotalWh      float64 `db:"total_wh"`
	Since        int64   `db:"since"`
}

type siteRow struct {
	Source string  `db:"source"`
	Wh     float64 `db:"wh"`
}

// NewSavingsStore creates a SQLite-backed savings store
func NewSavingsStore(db *DB) *SavingsStore {
	return &SavingsStore{db: db}
}

// LoadLedger returns the stored ledger, or a fresh one started at now
func (s *SavingsStore) LoadLedger(ctx context.Context, now time.Time) (*domain.SavingsLedger, error) {
	var row ledgerRow
	err := s.db.GetContext(ctx, &row, `
		SELECT today_wh, today_reset_at, week_wh, week_reset_at, total_wh, since
		FROM savings_ledger WHERE id = 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewSavingsLedger(now), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query savings ledger: %w", err)
	}

	var sites []siteRow
	if err := s.db.SelectContext(ctx, &sites, `SELECT source, wh FROM savings_sites`); err != nil {
		return nil, fmt.Errorf("failed to query site savings: %w", err)
	}

	loc := now.Location()
	ledger := &domain.SavingsLedger{
		Today: domain.Counter{Wh: row.TodayWh, ResetAt: time.Unix(0, row.TodayResetAt).In(loc)},
		Week:  domain.Counter{Wh: row.WeekWh, ResetAt: time.Unix(0, row.WeekResetAt).In(loc)},
		Total: row.TotalWh,
		Since: time.Unix(0, row.Since).In(loc),
		Sites: make(map[string]float64, len(sites)),
	}
	for _, site := range sites {
		ledger.Sites[site.Source] = site.Wh
	}
	return ledger, nil
}

// SaveLedger replaces the stored ledger in one transaction
func (s *SavingsStore) SaveLedger(ctx context.Context, ledger *domain.SavingsLedger) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO savings_ledger (id, today_wh, today_reset_at, week_wh, week_reset_at, total_wh, since)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			today_wh = excluded.today_wh,
			today_reset_at = excluded.today_reset_at,
			week_wh = excluded.week_wh,
			week_reset_at = excluded.week_reset_at,
			total_wh = excluded.total_wh,
			since = excluded.since
	`,
		ledger.Today.Wh, ledger.Today.ResetAt.UnixNano(),
		ledger.Week.Wh, ledger.Week.ResetAt.UnixNano(),
		ledger.Total, ledger.Since.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save savings ledger: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM savings_sites`); err != nil {
		return fmt.Errorf("failed to clear site savings: %w", err)
	}
	for source, wh := range ledger.Sites {
		if _, err := tx.ExecContext(ctx, `INSERT INTO savings_sites (source, wh) VALUES (?, ?)`, source, wh); err != nil {
			return fmt.Errorf("failed to save site savings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit savings ledger: %w", err)
	}
	return nil
}
