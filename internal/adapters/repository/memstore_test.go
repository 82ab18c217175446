package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/taper/internal/domain/model"
	"github.com/okian/taper/internal/domain/timeline"
)

func TestMemStoreUpsertAndHistory(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(WithShardCount(4))

	if err := s.UpsertLoad(ctx, "ath-1", model.DailyLoad{Date: "2026-03-02", CompositeLoad: 420}); err != nil {
		t.Fatalf("upsert load: %v", err)
	}
	if err := s.UpsertLoad(ctx, "ath-1", model.DailyLoad{Date: "2026-03-01", CompositeLoad: 300}); err != nil {
		t.Fatalf("upsert load: %v", err)
	}
	if err := s.UpsertBiometric(ctx, "ath-1", model.BiometricRecord{Date: "2026-03-01", HRVNight: 65}); err != nil {
		t.Fatalf("upsert biometric: %v", err)
	}

	h, err := s.History(ctx, "ath-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(h.Loads) != 2 || len(h.Biometrics) != 1 {
		t.Fatalf("unexpected history sizes: %d loads, %d biometrics", len(h.Loads), len(h.Biometrics))
	}
	if h.Loads[0].Date != "2026-03-01" || h.Loads[1].Date != "2026-03-02" {
		t.Errorf("loads not in ascending date order: %+v", h.Loads)
	}
}

func TestMemStoreSameDayReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	// Timestamp and bare day on the same calendar day collapse to one sample.
	if err := s.UpsertLoad(ctx, "ath-1", model.DailyLoad{Date: "2026-03-01T09:00:00Z", CompositeLoad: 300}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertLoad(ctx, "ath-1", model.DailyLoad{Date: "2026-03-01", CompositeLoad: 350}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	h, err := s.History(ctx, "ath-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(h.Loads) != 1 {
		t.Fatalf("expected 1 load after replacement, got %d", len(h.Loads))
	}
	if h.Loads[0].CompositeLoad != 350 {
		t.Errorf("expected latest sample to win, got %v", h.Loads[0].CompositeLoad)
	}
	if s.RecordCount(ctx) != 1 {
		t.Errorf("replacement must not grow the record count, got %d", s.RecordCount(ctx))
	}
}

func TestMemStoreInvalidDate(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	err := s.UpsertLoad(ctx, "ath-1", model.DailyLoad{Date: "yesterday", CompositeLoad: 100})
	if !errors.Is(err, timeline.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	err = s.UpsertBiometric(ctx, "ath-1", model.BiometricRecord{Date: ""})
	if !errors.Is(err, timeline.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	// Nothing was stored.
	if _, err := s.History(ctx, "ath-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStoreGenetics(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	entries := []model.GeneticProfileEntry{
		{Gene: "IL6", Genotype: "GG"},
		{Gene: "ACTN3", Genotype: "RR"},
	}
	if err := s.SetGenetics(ctx, "ath-1", entries); err != nil {
		t.Fatalf("set genetics: %v", err)
	}

	h, err := s.History(ctx, "ath-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(h.Genetics) != 2 || h.Genetics[0].Gene != "IL6" {
		t.Errorf("unexpected genetics: %+v", h.Genetics)
	}

	// The stored profile is a copy, not an alias of the caller's slice.
	entries[0].Genotype = "CC"
	h, _ = s.History(ctx, "ath-1")
	if h.Genetics[0].Genotype != "GG" {
		t.Error("stored genetics must not alias caller slice")
	}

	// A second upload replaces the profile entirely.
	if err := s.SetGenetics(ctx, "ath-1", []model.GeneticProfileEntry{{Gene: "COMT", Genotype: "AA"}}); err != nil {
		t.Fatalf("set genetics: %v", err)
	}
	h, _ = s.History(ctx, "ath-1")
	if len(h.Genetics) != 1 || h.Genetics[0].Gene != "COMT" {
		t.Errorf("expected replaced profile, got %+v", h.Genetics)
	}
}

func TestMemStoreUnknownAthlete(t *testing.T) {
	s := NewMemStore()
	if _, err := s.History(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStoreCounts(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(WithShardCount(8))

	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("ath-%d", i)
		for d := 1; d <= 5; d++ {
			date := fmt.Sprintf("2026-03-%02d", d)
			if err := s.UpsertLoad(ctx, id, model.DailyLoad{Date: date, CompositeLoad: 100}); err != nil {
				t.Fatalf("upsert: %v", err)
			}
		}
	}

	if got := s.Count(ctx); got != 10 {
		t.Errorf("expected 10 athletes, got %d", got)
	}
	if got := s.RecordCount(ctx); got != 50 {
		t.Errorf("expected 50 records, got %d", got)
	}
}

func TestMemStoreConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(WithShardCount(16))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			id := fmt.Sprintf("ath-%d", g)
			for d := 0; d < 28; d++ {
				date := fmt.Sprintf("2026-02-%02d", d%28+1)
				_ = s.UpsertLoad(ctx, id, model.DailyLoad{Date: date, CompositeLoad: float64(d)})
				_ = s.UpsertBiometric(ctx, id, model.BiometricRecord{Date: date, HRVNight: 60})
			}
		}(g)
	}
	wg.Wait()

	if got := s.Count(ctx); got != 8 {
		t.Errorf("expected 8 athletes, got %d", got)
	}
	for g := 0; g < 8; g++ {
		h, err := s.History(ctx, fmt.Sprintf("ath-%d", g))
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(h.Loads) != 28 || len(h.Biometrics) != 28 {
			t.Errorf("athlete %d: expected 28/28 samples, got %d/%d", g, len(h.Loads), len(h.Biometrics))
		}
	}
}
