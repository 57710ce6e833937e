package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/swellcheck/internal/app"
	"github.com/bbernstein/swellcheck/internal/config"
	"github.com/bbernstein/swellcheck/internal/scheduler"
	"github.com/bbernstein/swellcheck/internal/server"
	"github.com/bbernstein/swellcheck/internal/spots"
)

func main() {
	publish := flag.Bool("publish-spots", false, "upload the embedded spot catalog to SPOT_BUCKET and exit")
	flag.Parse()

	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	if *publish {
		if err := publishCatalog(ctx, services); err != nil {
			log.Fatal().Err(err).Msg("Failed to publish spot catalog")
		}
		return
	}

	board := scheduler.NewBoard()
	refresher := scheduler.New(services.Catalog, services.Conditions, board, cfg.RefreshInterval, services.BatchOptions())
	if err := refresher.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start spot refresh")
	}
	defer refresher.Stop()

	srv := server.New(server.Deps{
		Conditions: services.Conditions,
		Catalog:    services.Catalog,
		Batch:      services.BatchOptions(),
		Board:      board,
		Refresher:  refresher,
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down HTTP server")
		if err := srv.Shutdown(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown failed")
		}
	}()

	if err := srv.Listen(cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("HTTP server failed")
	}
}

func publishCatalog(ctx context.Context, services *app.Services) error {
	if services.Publisher == nil {
		log.Error().Msg("SPOT_BUCKET is not set")
		return os.ErrInvalid
	}

	static, err := spots.NewStaticCatalog()
	if err != nil {
		return err
	}
	all, err := static.List(ctx)
	if err != nil {
		return err
	}
	return services.Publisher.Publish(ctx, all)
}
