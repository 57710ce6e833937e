package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"

	"github.com/bbernstein/swellcheck/internal/models"
)

const (
	DefaultForecastDays = 7
	MaxForecastDays     = 16
)

var validate = validator.New()

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

func (r APIResponse) GetResponseType() string {
	return r.ResponseType
}

type ConditionsResponse struct {
	APIResponse
	Latitude   float64                     `json:"latitude"`
	Longitude  float64                     `json:"longitude"`
	Conditions models.NormalizedConditions `json:"conditions"`
	Degraded   bool                        `json:"degraded"`
}

type ForecastResponse struct {
	APIResponse
	Latitude  float64              `json:"latitude"`
	Longitude float64              `json:"longitude"`
	Days      []models.ForecastDay `json:"days"`
}

type SpotsResponse struct {
	APIResponse
	Spots []models.Spot `json:"spots"`
}

type ErrorResponse struct {
	APIResponse
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func NewConditionsResponse(lat, lon float64, c models.NormalizedConditions) *ConditionsResponse {
	return &ConditionsResponse{
		APIResponse: APIResponse{ResponseType: "conditions"},
		Latitude:    lat,
		Longitude:   lon,
		Conditions:  c,
		Degraded:    c.Degraded(),
	}
}

func NewForecastResponse(lat, lon float64, days []models.ForecastDay) *ForecastResponse {
	return &ForecastResponse{
		APIResponse: APIResponse{ResponseType: "forecast"},
		Latitude:    lat,
		Longitude:   lon,
		Days:        days,
	}
}

func NewSpotsResponse(spots []models.Spot) *SpotsResponse {
	if spots == nil {
		spots = []models.Spot{}
	}
	return &SpotsResponse{
		APIResponse: APIResponse{ResponseType: "spots"},
		Spots:       spots,
	}
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

func headers(requestID string) map[string]string {
	h := map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
	if requestID != "" {
		h["X-Request-ID"] = requestID
	}
	return h
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	return SuccessWithID(body, "")
}

func SuccessWithID(body interface{}, requestID string) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return ErrorWithID("Internal Server Error", http.StatusInternalServerError, requestID)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers(requestID),
		Body:       string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	return ErrorWithID(message, statusCode, "")
}

func ErrorWithID(message string, statusCode int, requestID string) (events.APIGatewayProxyResponse, error) {
	resp := NewErrorResponse(message)
	resp.RequestID = requestID
	body, _ := json.Marshal(resp)

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers(requestID),
		Body:       string(body),
	}, nil
}

// CoordinateQuery is a validated lat/lon pair
type CoordinateQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

// ForecastQuery is a coordinate plus the number of forecast days
type ForecastQuery struct {
	CoordinateQuery
	Days int `validate:"gte=1,lte=16"`
}

type InvalidCoordinatesError struct{}

func (e InvalidCoordinatesError) Error() string {
	return "Invalid coordinates"
}

// ErrMissingCoordinates is returned when lat or lon is absent
var ErrMissingCoordinates = errors.New("lat and lon are required")

// ParseCoordinates reads and validates the lat and lon parameters
func ParseCoordinates(params map[string]string) (float64, float64, error) {
	latStr, hasLat := params["lat"]
	lonStr, hasLon := params["lon"]

	if !hasLat || !hasLon || latStr == "" || lonStr == "" {
		return 0, 0, ErrMissingCoordinates
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, InvalidCoordinatesError{}
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, InvalidCoordinatesError{}
	}

	q := CoordinateQuery{Lat: lat, Lon: lon}
	if err := validate.Struct(q); err != nil {
		return 0, 0, InvalidCoordinatesError{}
	}

	return lat, lon, nil
}

// ParseForecastQuery reads the coordinates and an optional days parameter, which defaults to 7
func ParseForecastQuery(params map[string]string) (ForecastQuery, error) {
	lat, lon, err := ParseCoordinates(params)
	if err != nil {
		return ForecastQuery{}, err
	}

	q := ForecastQuery{
		CoordinateQuery: CoordinateQuery{Lat: lat, Lon: lon},
		Days:            DefaultForecastDays,
	}
	if daysStr, ok := params["days"]; ok && daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return ForecastQuery{}, fmt.Errorf("invalid days: %s", daysStr)
		}
		q.Days = days
	}

	if err := validate.Struct(q); err != nil {
		return ForecastQuery{}, fmt.Errorf("days must be between 1 and %d", MaxForecastDays)
	}
	return q, nil
}
