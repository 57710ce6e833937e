package handler

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/swellcheck/internal/api"
	"github.com/bbernstein/swellcheck/internal/conditions"
	"github.com/bbernstein/swellcheck/internal/models"
	"github.com/bbernstein/swellcheck/internal/spots"
)

type SpotsHandler struct {
	catalog models.SpotCatalog
	updater SpotUpdater
	batch   conditions.BatchOptions
}

func NewSpotsHandler(catalog models.SpotCatalog, updater SpotUpdater, batch conditions.BatchOptions) *SpotsHandler {
	return &SpotsHandler{
		catalog: catalog,
		updater: updater,
		batch:   batch,
	}
}

func (h *SpotsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := RequestID(request)
	params := request.QueryStringParameters

	// Single spot by ID
	if spotID, ok := params["spotId"]; ok {
		spot, err := h.catalog.Get(ctx, spotID)
		if err != nil {
			status, msg := StatusFor(err)
			return api.ErrorWithID(msg, status, requestID)
		}

		updated, err := h.updater.UpdateSpotWithLiveData(ctx, *spot)
		if err != nil {
			status, msg := StatusFor(err)
			log.Error().Err(err).Str("spot", spotID).Str("request_id", requestID).Msg("Updating spot failed")
			return api.ErrorWithID(msg, status, requestID)
		}
		return api.SuccessWithID(api.NewSpotsResponse([]models.Spot{updated}), requestID)
	}

	all, err := h.catalog.List(ctx)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID).Msg("Listing spots failed")
		return api.ErrorWithID("Error listing spots", http.StatusInternalServerError, requestID)
	}
	matched := spots.Search(all, params["q"])

	updated, err := h.updater.UpdateSpots(ctx, matched, h.batch)
	if err != nil {
		status, msg := StatusFor(err)
		return api.ErrorWithID(msg, status, requestID)
	}

	return api.SuccessWithID(api.NewSpotsResponse(updated), requestID)
}
