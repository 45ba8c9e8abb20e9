package radar

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"
)

// ErrNoLocation is returned when neither coordinates nor an address are available.
var ErrNoLocation = errors.New("station location unknown")

// Geocoder turns a free-form address into coordinates.
type Geocoder interface {
	Geocode(address string) (lat, lon float64, err error)
}

// GoogleGeocoder resolves addresses with the Google Geocoding API.
type GoogleGeocoder struct {
	APIKey string
}

// geocoder keeps its key in a package variable.
var geocoderMu sync.Mutex

func (g GoogleGeocoder) Geocode(address string) (float64, float64, error) {
	geocoderMu.Lock()
	defer geocoderMu.Unlock()

	geocoder.ApiKey = g.APIKey
	loc, err := geocoder.Geocoding(geocoder.Address{Street: address})
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", address, err)
	}
	return loc.Latitude, loc.Longitude, nil
}

// Coordinates is a point on the globe in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locator decides where the station is: explicit coordinates win, then the
// station's own reported position, then the geocoded address.
type Locator struct {
	Lat, Lon *float64
	Address  string
	Geocoder Geocoder

	mu       sync.Mutex
	resolved *Coordinates
}

// Locate returns the station position. reported is the position from station
// metadata; a zero value means unknown. Geocoded results are cached.
func (l *Locator) Locate(ctx context.Context, reported Coordinates) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	if l.Lat != nil && l.Lon != nil {
		return Coordinates{Latitude: *l.Lat, Longitude: *l.Lon}, nil
	}
	if reported != (Coordinates{}) {
		return reported, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.resolved != nil {
		return *l.resolved, nil
	}
	if l.Address == "" || l.Geocoder == nil {
		return Coordinates{}, ErrNoLocation
	}
	lat, lon, err := l.Geocoder.Geocode(l.Address)
	if err != nil {
		return Coordinates{}, err
	}
	l.resolved = &Coordinates{Latitude: lat, Longitude: lon}
	return *l.resolved, nil
}
