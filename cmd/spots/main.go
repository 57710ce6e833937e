package main

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/swellcheck/internal/app"
	"github.com/bbernstein/swellcheck/internal/config"
	"github.com/bbernstein/swellcheck/internal/handler"
)

var (
	lambdaStart  = lambda.Start // Allow mocking of lambda.Start in tests
	spotsHandler *handler.SpotsHandler
	setupOnce    sync.Once
)

func init() {
	setupOnce.Do(func() {
		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()

		services, err := app.New(context.Background(), cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize services")
		}

		spotsHandler = handler.NewSpotsHandler(services.Catalog, services.Conditions, services.BatchOptions())
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return spotsHandler.HandleRequest(ctx, request)
}

func main() {
	lambdaStart(handleRequest)
}
