// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stats

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/danielhkuo/daily-gallery/apperr"
	"github.com/danielhkuo/daily-gallery/models"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// AttemptReader looks up a user's stored attempt.
type AttemptReader interface {
	Get(ctx context.Context, userID string, key models.AlbumKey) (models.AttemptRecord, bool, error)
}

// AggregateReader looks up album totals.
type AggregateReader interface {
	Get(ctx context.Context, key models.AlbumKey) (models.AlbumAggregate, error)
}

// Reporter builds the read-side views. It never writes.
type Reporter struct {
	attempts   AttemptReader
	aggregates AggregateReader
	now        func() time.Time
}

func NewReporter(attempts AttemptReader, aggregates AggregateReader) *Reporter {
	return &Reporter{attempts: attempts, aggregates: aggregates, now: time.Now}
}

// Phrase describes a stored result.
func Phrase(succeeded bool, tries int) string {
	if !succeeded {
		return "did not succeed"
	}
	if tries == 1 {
		return "succeeded in 1 try"
	}
	return fmt.Sprintf("succeeded in %d tries", tries)
}

// SuccessRate is 100*successes/total rounded to one decimal, or 0 with no players.
func SuccessRate(successes, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(1000*float64(successes)/float64(total)) / 10
}

// UserResult reports whether the user has played the album and, if so,
// their stored result.
func (r *Reporter) UserResult(ctx context.Context, userID string, key models.AlbumKey) (models.UserResultResponse, error) {
	rec, found, err := r.attempts.Get(ctx, userID, key)
	if err != nil {
		return models.UserResultResponse{}, err
	}
	if !found {
		return models.UserResultResponse{HasPlayed: false, PlayCount: 0, Result: nil}, nil
	}

	return models.UserResultResponse{
		HasPlayed:   true,
		PlayCount:   rec.PlayCount,
		IsFirstPlay: rec.PlayCount == 1,
		Result: &models.PlayResultView{
			Succeeded:     rec.Succeeded,
			Tries:         rec.EncodedTries(),
			Phrase:        Phrase(rec.Succeeded, rec.Tries),
			FirstPlayedAt: rec.FirstPlayedAt,
			LastPlayedAt:  rec.LastPlayedAt,
			LastPlayedAgo: humanize.RelTime(rec.LastPlayedAt, r.now(), "ago", "from now"),
		},
	}, nil
}

// AlbumStats reports album totals. A storage failure yields zero totals
// flagged Degraded instead of an error; only an invalid key is an error.
func (r *Reporter) AlbumStats(ctx context.Context, key models.AlbumKey) (models.AlbumStatsResponse, error) {
	if err := key.Validate(); err != nil {
		return models.AlbumStatsResponse{}, apperr.InvalidInput("stats.album", "%v", err)
	}

	agg, err := r.aggregates.Get(ctx, key)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeInvalidInput) {
			return models.AlbumStatsResponse{}, err
		}
		slog.Warn("album stats unavailable, serving zero totals", "album", key.String(), "error", err)
		resp := FromAggregate(models.AlbumAggregate{Album: key})
		resp.Degraded = true
		return resp, nil
	}

	return FromAggregate(agg), nil
}

// FromAggregate converts stored totals to the response shape.
func FromAggregate(agg models.AlbumAggregate) models.AlbumStatsResponse {
	return models.AlbumStatsResponse{
		TotalPlayers:       agg.TotalPlayers,
		Successes:          agg.Successes,
		Failures:           agg.Failures,
		TotalTries:         agg.TotalTries,
		SuccessRatePercent: SuccessRate(agg.Successes, agg.TotalPlayers),
		Histogram: models.HistogramView{
			Try1: agg.Histogram[0],
			Try2: agg.Histogram[1],
			Try3: agg.Histogram[2],
			Try4: agg.Histogram[3],
			Try5: agg.Histogram[4],
		},
	}
}

// Summary reads the user result and album stats concurrently.
func (r *Reporter) Summary(ctx context.Context, userID string, key models.AlbumKey) (models.UserResultResponse, models.AlbumStatsResponse, error) {
	var (
		result models.UserResultResponse
		stats  models.AlbumStatsResponse
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result, err = r.UserResult(ctx, userID, key)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = r.AlbumStats(ctx, key)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.UserResultResponse{}, models.AlbumStatsResponse{}, err
	}

	return result, stats, nil
}
