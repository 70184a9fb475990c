package domain

import "context"

// Geocoder resolves a free-text place name to a coordinate.
type Geocoder interface {
	// Geocode returns the best-match coordinate for the query.
	// Zero results is an error, not a zero coordinate.
	Geocode(ctx context.Context, query string) (Coordinate, error)
}

// RouteProvider fetches a driving route between two coordinates.
type RouteProvider interface {
	// FetchRoute returns an ordered polyline of route points. Transport
	// failures surface as an empty route, not an error.
	FetchRoute(ctx context.Context, start, end Coordinate) (Route, error)
}
