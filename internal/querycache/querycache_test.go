package querycache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/openpermits/permitdash/internal/model"
)

// fakeClock lets tests advance simulated time instead of sleeping
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func sampleRange(day int) model.DateRange {
	return model.DateRange{
		Start: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func sampleRecords() []model.PermitRecord {
	return []model.PermitRecord{
		{Description: "deck addition", Type: "Residential"},
		{Description: "warehouse shell", Type: "Commercial"},
	}
}

func countingFetch(records []model.PermitRecord, calls *int) FetchFunc {
	return func(ctx context.Context, dateRange model.DateRange) ([]model.PermitRecord, error) {
		*calls++
		return records, nil
	}
}

func TestGet_MemoizesWithinTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)}
	cache := New(time.Hour, clock.Now)

	var calls int
	fetch := countingFetch(sampleRecords(), &calls)

	first, err := cache.Get(context.Background(), sampleRange(1), fetch)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	clock.Advance(59 * time.Minute)

	second, err := cache.Get(context.Background(), sampleRange(1), fetch)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected a single fetch, got %d", calls)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Cached result differs (-first +second):\n%s", diff)
	}
}

func TestGet_RefetchesAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)}
	cache := New(time.Hour, clock.Now)

	var calls int
	fetch := countingFetch(sampleRecords(), &calls)

	if _, err := cache.Get(context.Background(), sampleRange(1), fetch); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	clock.Advance(time.Hour)

	if _, err := cache.Get(context.Background(), sampleRange(1), fetch); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected a refetch after TTL expiry, got %d calls", calls)
	}
}

func TestGet_DistinctRangesFetchSeparately(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)}
	cache := New(time.Hour, clock.Now)

	var calls int
	fetch := countingFetch(sampleRecords(), &calls)

	if _, err := cache.Get(context.Background(), sampleRange(1), fetch); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := cache.Get(context.Background(), sampleRange(2), fetch); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected one fetch per distinct range, got %d", calls)
	}
	if Key(sampleRange(1)) == Key(sampleRange(2)) {
		t.Error("Expected distinct keys for distinct ranges")
	}
}

func TestGet_ErrorsAreNotCached(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)}
	cache := New(time.Hour, clock.Now)

	var calls int
	failing := errors.New("boom")
	fetch := func(ctx context.Context, dateRange model.DateRange) ([]model.PermitRecord, error) {
		calls++
		if calls == 1 {
			return nil, failing
		}
		return sampleRecords(), nil
	}

	if _, err := cache.Get(context.Background(), sampleRange(1), fetch); !errors.Is(err, failing) {
		t.Fatalf("Expected fetch error to propagate, got %v", err)
	}

	records, err := cache.Get(context.Background(), sampleRange(1), fetch)
	if err != nil {
		t.Fatalf("Expected second attempt to succeed, got %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected records from retry, got %d", len(records))
	}
	if calls != 2 {
		t.Errorf("Expected the failure not to be cached, got %d calls", calls)
	}
}

func TestClear(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)}
	cache := New(time.Hour, clock.Now)

	var calls int
	fetch := countingFetch(sampleRecords(), &calls)

	if _, err := cache.Get(context.Background(), sampleRange(1), fetch); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	cache.Clear()
	if _, err := cache.Get(context.Background(), sampleRange(1), fetch); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected refetch after Clear, got %d calls", calls)
	}
}
