package handler

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/swellcheck/internal/api"
)

type ConditionsHandler struct {
	service ConditionsService
}

func NewConditionsHandler(service ConditionsService) *ConditionsHandler {
	return &ConditionsHandler{
		service: service,
	}
}

// HandleRequest serves current conditions for lat/lon, or a forecast when a days parameter is present
func (h *ConditionsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := RequestID(request)
	params := request.QueryStringParameters

	if _, ok := params["days"]; ok {
		return h.forecast(ctx, params, requestID)
	}

	lat, lon, err := api.ParseCoordinates(params)
	if err != nil {
		return badRequest(err, requestID)
	}

	current, err := h.service.FetchConditions(ctx, lat, lon)
	if err != nil {
		status, msg := StatusFor(err)
		log.Error().Err(err).Str("request_id", requestID).Msg("Fetching conditions failed")
		return api.ErrorWithID(msg, status, requestID)
	}

	return api.SuccessWithID(api.NewConditionsResponse(lat, lon, current), requestID)
}

func (h *ConditionsHandler) forecast(ctx context.Context, params map[string]string, requestID string) (events.APIGatewayProxyResponse, error) {
	q, err := api.ParseForecastQuery(params)
	if err != nil {
		return badRequest(err, requestID)
	}

	days, err := h.service.FetchForecast(ctx, q.Lat, q.Lon, q.Days)
	if err != nil {
		status, msg := StatusFor(err)
		log.Error().Err(err).Str("request_id", requestID).Msg("Fetching forecast failed")
		return api.ErrorWithID(msg, status, requestID)
	}

	return api.SuccessWithID(api.NewForecastResponse(q.Lat, q.Lon, days), requestID)
}

func badRequest(err error, requestID string) (events.APIGatewayProxyResponse, error) {
	return api.ErrorWithID(err.Error(), http.StatusBadRequest, requestID)
}
