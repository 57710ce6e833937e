// Package server exposes conditions, forecasts and rated spots over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/swellcheck/internal/api"
	"github.com/bbernstein/swellcheck/internal/conditions"
	"github.com/bbernstein/swellcheck/internal/handler"
	"github.com/bbernstein/swellcheck/internal/models"
	"github.com/bbernstein/swellcheck/internal/scheduler"
	"github.com/bbernstein/swellcheck/internal/spots"
)

const requestIDKey = "requestid"

// ConditionsService is satisfied by conditions.Client
type ConditionsService interface {
	handler.ConditionsService
	handler.SpotUpdater
	CacheStats() map[string]map[string]uint64
	Refresh()
}

var _ ConditionsService = (*conditions.Client)(nil)

// Refresher re-rates the spot board on demand
type Refresher interface {
	RunOnce(ctx context.Context) error
}

type Deps struct {
	Conditions ConditionsService
	Catalog    models.SpotCatalog
	Batch      conditions.BatchOptions
	// Board and Refresher are optional. Without a board every spot listing is rated live.
	Board     *scheduler.Board
	Refresher Refresher
}

type Server struct {
	app  *fiber.App
	deps Deps
}

func New(deps Deps) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "swellcheck",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	app.Use(requestLogger)

	s := &Server{app: app, deps: deps}
	s.registerRoutes()
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(port string) error {
	log.Info().Str("port", port).Msg("HTTP server listening")
	return s.app.Listen(":" + port)
}

func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.health)

	v1 := s.app.Group("/api/v1")
	v1.Get("/conditions", s.getConditions)
	v1.Get("/forecast", s.getForecast)
	v1.Get("/spots", s.listSpots)
	v1.Get("/spots/:id", s.getSpot)
	v1.Post("/refresh", s.refresh)
}

func (s *Server) health(c *fiber.Ctx) error {
	body := fiber.Map{
		"status": "ok",
		"caches": s.deps.Conditions.CacheStats(),
	}
	if s.deps.Board != nil {
		body["spotCount"] = s.deps.Board.Len()
		if at := s.deps.Board.UpdatedAt(); !at.IsZero() {
			body["spotsUpdatedAt"] = at.UTC()
		}
	}
	return c.JSON(body)
}

func (s *Server) getConditions(c *fiber.Ctx) error {
	lat, lon, err := api.ParseCoordinates(c.Queries())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	current, err := s.deps.Conditions.FetchConditions(c.UserContext(), lat, lon)
	if err != nil {
		return err
	}
	return c.JSON(api.NewConditionsResponse(lat, lon, current))
}

func (s *Server) getForecast(c *fiber.Ctx) error {
	q, err := api.ParseForecastQuery(c.Queries())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	days, err := s.deps.Conditions.FetchForecast(c.UserContext(), q.Lat, q.Lon, q.Days)
	if err != nil {
		return err
	}
	return c.JSON(api.NewForecastResponse(q.Lat, q.Lon, days))
}

func (s *Server) listSpots(c *fiber.Ctx) error {
	query := c.Query("q")

	if s.deps.Board != nil && s.deps.Board.Len() > 0 {
		return c.JSON(api.NewSpotsResponse(spots.Search(s.deps.Board.Spots(), query)))
	}

	all, err := s.deps.Catalog.List(c.UserContext())
	if err != nil {
		return fmt.Errorf("listing spots: %w", err)
	}
	updated, err := s.deps.Conditions.UpdateSpots(c.UserContext(), spots.Search(all, query), s.deps.Batch)
	if err != nil {
		return err
	}
	return c.JSON(api.NewSpotsResponse(updated))
}

func (s *Server) getSpot(c *fiber.Ctx) error {
	id := c.Params("id")
	if s.deps.Board != nil {
		// a spot the last refresh could not rate is rated live below
		if rated, ok := s.deps.Board.Get(id); ok && rated.Live != nil {
			return c.JSON(api.NewSpotsResponse([]models.Spot{rated}))
		}
	}

	spot, err := s.deps.Catalog.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	updated, err := s.deps.Conditions.UpdateSpotWithLiveData(c.UserContext(), *spot)
	if err != nil {
		return err
	}
	return c.JSON(api.NewSpotsResponse([]models.Spot{updated}))
}

func (s *Server) refresh(c *fiber.Ctx) error {
	s.deps.Conditions.Refresh()

	if s.deps.Refresher != nil {
		if err := s.deps.Refresher.RunOnce(c.UserContext()); err != nil {
			return err
		}
	}
	return c.JSON(fiber.Map{"status": "refreshed"})
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			status, _ = handler.StatusFor(err)
		}
	}

	log.Debug().
		Str("request_id", requestID(c)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("Handled request")
	return err
}

func errorHandler(c *fiber.Ctx, err error) error {
	var status int
	var msg string

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status, msg = fe.Code, fe.Message
	} else {
		status, msg = handler.StatusFor(err)
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("request_id", requestID(c)).Str("path", c.Path()).Msg("Request failed")
		}
	}

	resp := api.NewErrorResponse(msg)
	resp.RequestID = requestID(c)
	return c.Status(status).JSON(resp)
}
