// Package scheduler keeps a board of rated spots fresh by re-scoring the
// catalog on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/swellcheck/internal/conditions"
	"github.com/bbernstein/swellcheck/internal/models"
)

// Updater is satisfied by conditions.Client
type Updater interface {
	UpdateSpots(ctx context.Context, spots []models.Spot, opts conditions.BatchOptions) ([]models.Spot, error)
}

type Scheduler struct {
	scheduler *gocron.Scheduler
	catalog   models.SpotCatalog
	updater   Updater
	board     *Board
	interval  time.Duration
	batch     conditions.BatchOptions
	timeout   time.Duration
	now       func() time.Time

	runMu sync.Mutex
}

func New(catalog models.SpotCatalog, updater Updater, board *Board, interval time.Duration, batch conditions.BatchOptions) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Scheduler{
		scheduler: s,
		catalog:   catalog,
		updater:   updater,
		board:     board,
		interval:  interval,
		batch:     batch,
		timeout:   interval,
		now:       time.Now,
	}
}

// Start schedules the refresh job, which first runs immediately, and returns
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled spot refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling spot refresh: %w", err)
	}

	s.scheduler.StartAsync()
	log.Info().Dur("interval", s.interval).Msg("Spot refresh scheduled")
	return nil
}

// Stop stops the scheduler and cancels any future jobs
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunOnce re-rates every catalog spot and publishes the result to the board.
// Concurrent calls are serialized.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := s.now()
	log.Debug().Msg("Running spot refresh")

	catalog, err := s.catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("listing spots: %w", err)
	}

	updated, err := s.updater.UpdateSpots(ctx, s.board.carryOver(catalog), s.batch)
	if err != nil {
		// keep whatever finished before the context ended
		if len(updated) == len(catalog) {
			s.board.Replace(updated, s.now())
		}
		return fmt.Errorf("updating spots: %w", err)
	}

	s.board.Replace(updated, s.now())
	log.Info().
		Int("spot_count", len(updated)).
		Dur("duration", s.now().Sub(start)).
		Msg("Spot refresh completed")
	return nil
}
