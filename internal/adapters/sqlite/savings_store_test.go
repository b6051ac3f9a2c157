package sqlite

import (
	"context"
	"testing"
	"time"
)

func TestSavingsStore_FreshLedger(t *testing.T) {
	store := NewSavingsStore(newTestDB(t))
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	ledger, err := store.LoadLedger(context.Background(), now)
	if err != nil {
		t.Fatalf("LoadLedger failed: %v", err)
	}
	if ledger.Total != 0 || !ledger.Since.Equal(now) {
		t.Errorf("expected empty ledger since %v, got %+v", now, ledger)
	}
}

func TestSavingsStore_RoundTrip(t *testing.T) {
	store := NewSavingsStore(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	ledger, _ := store.LoadLedger(ctx, now)
	ledger.Add(now, "https://a.example", 1.25)
	ledger.Add(now, "https://b.example", 0.75)
	if err := store.SaveLedger(ctx, ledger); err != nil {
		t.Fatalf("SaveLedger failed: %v", err)
	}

	ledger.Add(now, "https://a.example", 1)
	if err := store.SaveLedger(ctx, ledger); err != nil {
		t.Fatalf("second SaveLedger failed: %v", err)
	}

	got, err := store.LoadLedger(ctx, now)
	if err != nil {
		t.Fatalf("LoadLedger failed: %v", err)
	}
	if got.Total != 3 {
		t.Errorf("got total %v, want 3", got.Total)
	}
	if got.Sites["https://a.example"] != 2.25 {
		t.Errorf("got site a %v, want 2.25", got.Sites["https://a.example"])
	}
	if !got.Today.ResetAt.Equal(ledger.Today.ResetAt) || !got.Week.ResetAt.Equal(ledger.Week.ResetAt) {
		t.Errorf("reset times not preserved: got %v/%v", got.Today.ResetAt, got.Week.ResetAt)
	}

	summary := got.Summary(now, "https://b.example")
	if summary.CurrentSite != 0.75 || summary.Today != 3 || summary.Week != 3 {
		t.Errorf("unexpected summary %+v", summary)
	}
}
