package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/swellcheck/internal/api"
	"github.com/bbernstein/swellcheck/internal/handler"
	"github.com/bbernstein/swellcheck/internal/models"
)

type mockConditionsService struct{}

func (m *mockConditionsService) FetchConditions(ctx context.Context, lat, lng float64) (models.NormalizedConditions, error) {
	return models.NormalizedConditions{
		SwellHeight:    2.5,
		SwellDirection: "S",
		WindDirection:  "N",
		Timestamp:      time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC),
		Sources:        models.Sources{Weather: models.SourceLive, Marine: models.SourceLive},
	}, nil
}

func (m *mockConditionsService) FetchForecast(ctx context.Context, lat, lng float64, days int) ([]models.ForecastDay, error) {
	return make([]models.ForecastDay, days), nil
}

var (
	mu sync.Mutex // Protect lambdaStart in tests
)

func TestLambdaInit(t *testing.T) {
	mu.Lock()
	originalStartFn := lambdaStart
	var startCalled bool
	lambdaStart = func(handler interface{}) {
		mu.Lock()
		startCalled = true
		mu.Unlock()

		handlerType := reflect.TypeOf(handler)
		if handlerType.Kind() != reflect.Func {
			t.Error("Handler is not a function")
			return
		}

		contextInterface := reflect.TypeOf((*context.Context)(nil)).Elem()
		proxyRequest := reflect.TypeOf(events.APIGatewayProxyRequest{})
		proxyResponse := reflect.TypeOf(events.APIGatewayProxyResponse{})
		errorInterface := reflect.TypeOf((*error)(nil)).Elem()

		if handlerType.NumIn() != 2 || handlerType.NumOut() != 2 ||
			!handlerType.In(0).Implements(contextInterface) ||
			handlerType.In(1) != proxyRequest ||
			handlerType.Out(0) != proxyResponse ||
			!handlerType.Out(1).Implements(errorInterface) {
			t.Error("Handler does not match expected signature")
		}
	}
	mu.Unlock()

	defer func() {
		mu.Lock()
		lambdaStart = originalStartFn
		mu.Unlock()
	}()

	main()

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, startCalled, "Lambda start was not called")
	assert.NotNil(t, conditionsHandler)
}

func TestMain(m *testing.M) {
	if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
		return
	}
	if err := os.Setenv("ENV", "test"); err != nil {
		return
	}

	os.Exit(m.Run())
}

func TestHandleRequest(t *testing.T) {
	original := conditionsHandler
	conditionsHandler = handler.NewConditionsHandler(&mockConditionsService{})
	defer func() { conditionsHandler = original }()

	tests := []struct {
		name           string
		params         map[string]string
		expectedStatus int
		responseType   string
	}{
		{
			name:           "current conditions",
			params:         map[string]string{"lat": "21.665", "lon": "-158.053"},
			expectedStatus: http.StatusOK,
			responseType:   "conditions",
		},
		{
			name:           "forecast",
			params:         map[string]string{"lat": "21.665", "lon": "-158.053", "days": "5"},
			expectedStatus: http.StatusOK,
			responseType:   "forecast",
		},
		{
			name:           "no parameters",
			params:         nil,
			expectedStatus: http.StatusBadRequest,
			responseType:   "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := handleRequest(context.Background(), events.APIGatewayProxyRequest{
				QueryStringParameters: tt.params,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body api.APIResponse
			require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
			assert.Equal(t, tt.responseType, body.ResponseType)
		})
	}
}
