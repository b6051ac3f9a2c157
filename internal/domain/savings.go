package domain

import "time"

// Counter accumulates watt-hours until ResetAt, then starts over.
type Counter struct {
	Wh      float64   `json:"wh"`
	ResetAt time.Time `json:"resetAt"`
}

// SavingsLedger keeps running savings totals.
// Counters are updated in O(1) per sample and roll over lazily: the first
// write or read past a reset boundary zeroes the counter and moves the boundary.
type SavingsLedger struct {
	Today Counter            `json:"today"`
	Week  Counter            `json:"week"`
	Total float64            `json:"total"`
	Since time.Time          `json:"since"`
	Sites map[string]float64 `json:"sites"`
}

// NewSavingsLedger starts an empty ledger at now.
func NewSavingsLedger(now time.Time) *SavingsLedger {
	return &SavingsLedger{
		Today: Counter{ResetAt: NextMidnight(now)},
		Week:  Counter{ResetAt: NextWeekStart(now)},
		Since: now,
		Sites: make(map[string]float64),
	}
}

// Add records wh saved on source at now.
func (l *SavingsLedger) Add(now time.Time, source string, wh float64) {
	l.Rollover(now)
	if wh <= 0 {
		return
	}
	if l.Sites == nil {
		l.Sites = make(map[string]float64)
	}
	if source == "" {
		source = UnknownSource
	}

	l.Today.Wh += wh
	l.Week.Wh += wh
	l.Total += wh
	l.Sites[source] += wh
}

// Rollover zeroes any counter whose reset boundary has passed.
func (l *SavingsLedger) Rollover(now time.Time) {
	if l.Today.ResetAt.IsZero() || !now.Before(l.Today.ResetAt) {
		l.Today = Counter{ResetAt: NextMidnight(now)}
	}
	if l.Week.ResetAt.IsZero() || !now.Before(l.Week.ResetAt) {
		l.Week = Counter{ResetAt: NextWeekStart(now)}
	}
}

// Summary reports the counters as seen at now for the given source.
func (l *SavingsLedger) Summary(now time.Time, source string) SavingsSummary {
	s := SavingsSummary{
		CurrentSite: l.Sites[source],
		Total:       l.Total,
	}
	if now.Before(l.Today.ResetAt) {
		s.Today = l.Today.Wh
	}
	if now.Before(l.Week.ResetAt) {
		s.Week = l.Week.Wh
	}
	return s
}

// NextMidnight returns the start of the day after t, in t's location.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// StartOfDay returns midnight of t's day, in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextWeekStart returns the next Monday 00:00 strictly after t.
func NextWeekStart(t time.Time) time.Time {
	// Monday=0 ... Sunday=6
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset+7, 0, 0, 0, 0, t.Location())
}
