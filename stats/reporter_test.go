// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielhkuo/daily-gallery/aggregate"
	"github.com/danielhkuo/daily-gallery/albums"
	"github.com/danielhkuo/daily-gallery/apperr"
	"github.com/danielhkuo/daily-gallery/attempts"
	"github.com/danielhkuo/daily-gallery/db"
	"github.com/danielhkuo/daily-gallery/models"
	"github.com/danielhkuo/daily-gallery/testutil"
)

var testKey = models.AlbumKey{Date: "2025-03-01", Number: 1}

type stubAttempts struct {
	rec   models.AttemptRecord
	found bool
	err   error
}

func (s stubAttempts) Get(ctx context.Context, userID string, key models.AlbumKey) (models.AttemptRecord, bool, error) {
	return s.rec, s.found, s.err
}

type stubAggregates struct {
	agg models.AlbumAggregate
	err error
}

func (s stubAggregates) Get(ctx context.Context, key models.AlbumKey) (models.AlbumAggregate, error) {
	return s.agg, s.err
}

func TestPhrase(t *testing.T) {
	tests := []struct {
		succeeded bool
		tries     int
		want      string
	}{
		{true, 1, "succeeded in 1 try"},
		{true, 3, "succeeded in 3 tries"},
		{true, 5, "succeeded in 5 tries"},
		{false, 0, "did not succeed"},
	}

	for _, tt := range tests {
		if got := Phrase(tt.succeeded, tt.tries); got != tt.want {
			t.Errorf("Phrase(%v, %d) = %q, want %q", tt.succeeded, tt.tries, got, tt.want)
		}
	}
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		successes, total int
		want             float64
	}{
		{0, 0, 0},
		{3, 4, 75.0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{5, 5, 100},
		{0, 7, 0},
	}

	for _, tt := range tests {
		if got := SuccessRate(tt.successes, tt.total); got != tt.want {
			t.Errorf("SuccessRate(%d, %d) = %v, want %v", tt.successes, tt.total, got, tt.want)
		}
	}
}

func TestUserResultNotPlayed(t *testing.T) {
	r := NewReporter(stubAttempts{}, stubAggregates{})

	res, err := r.UserResult(context.Background(), "user-1", testKey)
	if err != nil {
		t.Fatalf("UserResult failed: %v", err)
	}
	if res.HasPlayed || res.Result != nil || res.PlayCount != 0 {
		t.Errorf("Expected empty result, got %+v", res)
	}
}

func TestUserResultPlayed(t *testing.T) {
	last := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r := NewReporter(stubAttempts{found: true, rec: models.AttemptRecord{
		Album:         testKey,
		Succeeded:     false,
		PlayCount:     3,
		FirstPlayedAt: last.Add(-time.Hour),
		LastPlayedAt:  last,
	}}, stubAggregates{})
	r.now = func() time.Time { return last.Add(2 * time.Hour) }

	res, err := r.UserResult(context.Background(), "user-1", testKey)
	if err != nil {
		t.Fatalf("UserResult failed: %v", err)
	}
	if !res.HasPlayed || res.PlayCount != 3 || res.IsFirstPlay {
		t.Errorf("Expected played 3 times, got %+v", res)
	}
	if res.Result == nil {
		t.Fatal("Expected result view")
	}
	if res.Result.Phrase != "did not succeed" || res.Result.Tries != models.FailedTries {
		t.Errorf("Expected failure view, got %+v", res.Result)
	}
	if res.Result.LastPlayedAgo != "2 hours ago" {
		t.Errorf("Expected '2 hours ago', got %q", res.Result.LastPlayedAgo)
	}
}

func TestUserResultSurfacesStorageErrors(t *testing.T) {
	down := apperr.New(apperr.CodeStorageUnavailable, "attempts.get", "down")
	r := NewReporter(stubAttempts{err: down}, stubAggregates{})

	_, err := r.UserResult(context.Background(), "user-1", testKey)
	if !apperr.IsCode(err, apperr.CodeStorageUnavailable) {
		t.Errorf("Expected storage_unavailable, got %v", err)
	}
}

func TestAlbumStatsDegradesOnStorageError(t *testing.T) {
	r := NewReporter(stubAttempts{}, stubAggregates{err: errors.New("connection reset")})

	stats, err := r.AlbumStats(context.Background(), testKey)
	if err != nil {
		t.Fatalf("Expected degraded stats, got error %v", err)
	}
	if !stats.Degraded {
		t.Error("Expected Degraded flag")
	}
	if stats.TotalPlayers != 0 || stats.SuccessRatePercent != 0 {
		t.Errorf("Expected zero totals, got %+v", stats)
	}
}

func TestAlbumStatsRejectsBadKey(t *testing.T) {
	r := NewReporter(stubAttempts{}, stubAggregates{})

	_, err := r.AlbumStats(context.Background(), models.AlbumKey{Date: "2025-02-30", Number: 1})
	if !apperr.IsCode(err, apperr.CodeInvalidInput) {
		t.Errorf("Expected invalid_input, got %v", err)
	}
}

func TestFromAggregate(t *testing.T) {
	stats := FromAggregate(models.AlbumAggregate{
		TotalPlayers: 4,
		Successes:    3,
		Failures:     1,
		TotalTries:   1 + 2 + 2 + 6,
		Histogram:    [models.MaxTries]int{1, 2, 0, 0, 0},
	})

	if stats.SuccessRatePercent != 75.0 {
		t.Errorf("Expected 75.0, got %v", stats.SuccessRatePercent)
	}
	if stats.Histogram.Try1 != 1 || stats.Histogram.Try2 != 2 || stats.Histogram.Try5 != 0 {
		t.Errorf("Unexpected histogram %+v", stats.Histogram)
	}
	if stats.TotalTries != 11 {
		t.Errorf("Expected total tries 11, got %d", stats.TotalTries)
	}
}

func TestSummaryAgainstDatabase(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	runner := db.NewRunner(conn, 5)
	counter := aggregate.NewCounter(conn)
	ledger := attempts.NewLedger(runner, albums.NewStore(runner), counter, testutil.TestHashSalt)
	r := NewReporter(ledger, counter)
	ctx := context.Background()

	key := testutil.CreateTestAlbum(t, conn, testKey.Date, testKey.Number)

	// Zero state
	result, stats, err := r.Summary(ctx, "me", key)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if result.HasPlayed || stats.TotalPlayers != 0 || stats.SuccessRatePercent != 0 {
		t.Errorf("Expected zero state, got %+v / %+v", result, stats)
	}
	if stats.Histogram != (models.HistogramView{}) {
		t.Errorf("Expected empty histogram, got %+v", stats.Histogram)
	}

	plays := []struct {
		user      string
		succeeded bool
		tries     int
	}{
		{"me", true, 2},
		{"a", true, 1},
		{"b", true, 2},
		{"c", false, 4},
	}
	for _, p := range plays {
		if _, err := ledger.RegisterAttempt(ctx, p.user, key, p.succeeded, p.tries); err != nil {
			t.Fatalf("RegisterAttempt(%s) failed: %v", p.user, err)
		}
	}

	result, stats, err = r.Summary(ctx, "me", key)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !result.HasPlayed || !result.IsFirstPlay || result.Result.Phrase != "succeeded in 2 tries" {
		t.Errorf("Unexpected user result %+v", result)
	}
	if stats.SuccessRatePercent != 75.0 {
		t.Errorf("Expected 75.0, got %v", stats.SuccessRatePercent)
	}
	if stats.Histogram.Try1 != 1 || stats.Histogram.Try2 != 2 {
		t.Errorf("Unexpected histogram %+v", stats.Histogram)
	}
	if stats.Degraded {
		t.Error("Expected live stats")
	}
}
