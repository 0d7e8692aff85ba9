package routing

import "errors"

var (
	ErrNoLocations  = errors.New("no locations")
	ErrBoxTooLarge  = errors.New("bounding box exceeds area ceiling")
	ErrNoPath       = errors.New("no path between nodes")
	ErrEmptyNetwork = errors.New("road network has no nodes")
)
