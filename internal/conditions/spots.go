package conditions

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/bbernstein/swellcheck/internal/models"
)

// BatchOptions bounds how many spots are updated at once and how long to
// pause between batches
type BatchOptions struct {
	Size  int
	Delay time.Duration
}

var DefaultBatchOptions = BatchOptions{
	Size:  3,
	Delay: time.Second,
}

// UpdateSpotWithLiveData returns a copy of spot with live conditions, tide and
// a quality rating attached. The input spot is not modified.
func (c *Client) UpdateSpotWithLiveData(ctx context.Context, spot models.Spot) (models.Spot, error) {
	live, err := c.FetchConditions(ctx, spot.Latitude, spot.Longitude)
	if err != nil {
		return models.Spot{}, err
	}

	if c.tide != nil {
		state, err := c.tide.CurrentState(ctx, spot.Latitude, spot.Longitude)
		if err != nil {
			log.Warn().Err(err).Str("spot", spot.ID).Msg("Tide unavailable, scoring with unknown tide")
		} else if state != nil {
			tide := *state
			live.Tide = &tide
		}
	}

	result := c.scorer.Score(live, spot.BestConditions)
	updatedAt := c.now().UTC()

	out := spot.Clone()
	out.Live = &live
	out.Quality = &result
	out.LastUpdated = &updatedAt

	log.Debug().
		Str("spot", spot.ID).
		Float64("score", result.Score).
		Str("rating", string(result.Rating())).
		Msg("Updated spot")

	return out, nil
}

// UpdateSpots updates spots in batches of opts.Size, waiting opts.Delay between
// batches. The result has the same order as the input. A spot that fails to
// update keeps its previous data. The returned error is only ever the context's.
func (c *Client) UpdateSpots(ctx context.Context, spots []models.Spot, opts BatchOptions) ([]models.Spot, error) {
	if opts.Size <= 0 {
		opts.Size = DefaultBatchOptions.Size
	}

	out := make([]models.Spot, len(spots))
	for i := range spots {
		out[i] = spots[i].Clone()
	}

	for start := 0; start < len(spots); start += opts.Size {
		if start > 0 && opts.Delay > 0 {
			timer := time.NewTimer(opts.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out, ctx.Err()
			case <-timer.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		end := min(start+opts.Size, len(spots))

		var g errgroup.Group
		g.SetLimit(opts.Size)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				updated, err := c.UpdateSpotWithLiveData(ctx, spots[i])
				if err != nil {
					log.Warn().Err(err).Str("spot", spots[i].ID).Msg("Keeping previous data for spot")
					return nil
				}
				out[i] = updated
				return nil
			})
		}
		_ = g.Wait()
	}

	log.Info().Int("spots", len(spots)).Int("batch_size", opts.Size).Msg("Updated spots")
	return out, ctx.Err()
}
