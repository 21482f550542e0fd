// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/daily-gallery/apperr"
	"github.com/danielhkuo/daily-gallery/db"
	"github.com/danielhkuo/daily-gallery/models"
	"github.com/danielhkuo/daily-gallery/testutil"
)

func record(t *testing.T, runner *db.Runner, c *Counter, key models.AlbumKey, succeeded bool, tries int) error {
	t.Helper()
	return runner.InTx(context.Background(), "test.record", func(ctx context.Context, tx *sql.Tx) error {
		return c.RecordFirstPlay(ctx, tx, key, succeeded, tries)
	})
}

func TestGetZeroState(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	key := testutil.CreateTestAlbum(t, conn, "2025-03-01", 1)

	agg, err := NewCounter(conn).Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if agg.TotalPlayers != 0 || agg.Successes != 0 || agg.Failures != 0 || agg.TotalTries != 0 {
		t.Errorf("Expected zero totals, got %+v", agg)
	}
	if agg.HistogramSum() != 0 {
		t.Errorf("Expected empty histogram, got %v", agg.Histogram)
	}
	if agg.Album != key {
		t.Errorf("Expected album %v, got %v", key, agg.Album)
	}
}

func TestRecordFirstPlay(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	runner := db.NewRunner(conn, 3)
	counter := NewCounter(conn)
	key := testutil.CreateTestAlbum(t, conn, "2025-03-01", 1)

	plays := []struct {
		succeeded bool
		tries     int
	}{
		{true, 1},
		{true, 3},
		{true, 3},
		{false, models.FailedTries},
	}
	for _, p := range plays {
		if err := record(t, runner, counter, key, p.succeeded, p.tries); err != nil {
			t.Fatalf("RecordFirstPlay(%v, %d) failed: %v", p.succeeded, p.tries, err)
		}
	}

	agg, err := counter.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if agg.TotalPlayers != 4 {
		t.Errorf("Expected 4 players, got %d", agg.TotalPlayers)
	}
	if agg.Successes != 3 || agg.Failures != 1 {
		t.Errorf("Expected 3 successes and 1 failure, got %d and %d", agg.Successes, agg.Failures)
	}
	if agg.TotalTries != 1+3+3+6 {
		t.Errorf("Expected total tries 13, got %d", agg.TotalTries)
	}
	want := [models.MaxTries]int{1, 0, 2, 0, 0}
	if agg.Histogram != want {
		t.Errorf("Expected histogram %v, got %v", want, agg.Histogram)
	}
	if agg.TotalPlayers != agg.Successes+agg.Failures {
		t.Error("total_players != successes + failures")
	}
	if agg.HistogramSum() != agg.Successes {
		t.Error("histogram sum != successes")
	}
}

func TestRecordFirstPlayRejectsBadTries(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	runner := db.NewRunner(conn, 3)
	counter := NewCounter(conn)
	key := testutil.CreateTestAlbum(t, conn, "2025-03-01", 1)

	tests := []struct {
		name      string
		succeeded bool
		tries     int
	}{
		{"success with zero tries", true, 0},
		{"success with six tries", true, 6},
		{"failure with three tries", false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := record(t, runner, counter, key, tt.succeeded, tt.tries)
			if !apperr.IsCode(err, apperr.CodeInvalidInput) {
				t.Errorf("Expected invalid_input, got %v", err)
			}
		})
	}

	agg, err := counter.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if agg.TotalPlayers != 0 {
		t.Errorf("Expected no players after rejected updates, got %d", agg.TotalPlayers)
	}
}

func TestRecordFirstPlayRollsBackWithTransaction(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	runner := db.NewRunner(conn, 3)
	counter := NewCounter(conn)
	key := testutil.CreateTestAlbum(t, conn, "2025-03-01", 1)

	err := runner.InTx(context.Background(), "test.rollback", func(ctx context.Context, tx *sql.Tx) error {
		if err := counter.RecordFirstPlay(ctx, tx, key, true, 2); err != nil {
			return err
		}
		return apperr.New(apperr.CodeInternal, "test.rollback", "abort")
	})
	if !apperr.IsCode(err, apperr.CodeInternal) {
		t.Fatalf("Expected internal error, got %v", err)
	}

	agg, err := counter.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if agg.TotalPlayers != 0 || agg.HistogramSum() != 0 {
		t.Errorf("Expected rollback to discard the update, got %+v", agg)
	}
}

// TestGetNeverTornByConcurrentWrites reads totals while first plays are
// being recorded; every read must satisfy the aggregate invariants.
func TestGetNeverTornByConcurrentWrites(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	runner := db.NewRunner(conn, 10)
	counter := NewCounter(conn)
	key := testutil.CreateTestAlbum(t, conn, "2025-03-01", 1)
	ctx := context.Background()

	const numPlays = 200
	var done atomic.Bool
	var reads, torn atomic.Int32
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer done.Store(true)
		for i := 0; i < numPlays; i++ {
			succeeded := i%4 != 0
			tries := models.FailedTries
			if succeeded {
				tries = i%models.MaxTries + 1
			}
			if err := record(t, runner, counter, key, succeeded, tries); err != nil {
				t.Errorf("RecordFirstPlay failed: %v", err)
				return
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for !done.Load() {
			agg, err := counter.Get(ctx, key)
			if err != nil {
				t.Errorf("Get failed: %v", err)
				return
			}
			reads.Add(1)
			if agg.HistogramSum() != agg.Successes || agg.TotalPlayers != agg.Successes+agg.Failures {
				torn.Add(1)
				t.Logf("inconsistent read: %+v", agg)
			}
		}
	}()
	wg.Wait()

	if torn.Load() != 0 {
		t.Errorf("%d of %d reads were inconsistent", torn.Load(), reads.Load())
	}

	agg, err := counter.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if agg.TotalPlayers != numPlays || agg.HistogramSum() != agg.Successes {
		t.Errorf("Unexpected final totals: %+v", agg)
	}
}
