package models

import "context"

type StationFinder interface {
	FindStation(ctx context.Context, stationID string) (*Station, error)
	FindNearestStations(ctx context.Context, lat, lon float64, limit int) ([]Station, error)
}

// TideProvider resolves the current tide at a coordinate
type TideProvider interface {
	CurrentState(ctx context.Context, lat, lon float64) (*TideState, error)
}

// SpotCatalog is the read-only source of static spot records
type SpotCatalog interface {
	List(ctx context.Context) ([]Spot, error)
	Get(ctx context.Context, id string) (*Spot, error)
}
