package radar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"
)

// DefaultNWSBaseURL is the public National Weather Service API.
const DefaultNWSBaseURL = "https://api.weather.gov"

// nexradType is the only station type the dashboard shows; TDWR and others are skipped.
const nexradType = "WSR-88D"

// ErrNoStation is returned when no NEXRAD station is listed.
var ErrNoStation = errors.New("no radar station found")

// Station is a NEXRAD radar site and its distance from the query point.
type Station struct {
	StationID  string  `json:"stationId"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distanceKm"`
}

// NWSClient looks up radar sites on api.weather.gov.
type NWSClient struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewNWSClient returns a client for baseURL, or DefaultNWSBaseURL when empty.
func NewNWSClient(client *http.Client, baseURL string) *NWSClient {
	if baseURL == "" {
		baseURL = DefaultNWSBaseURL
	}
	return &NWSClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{Client: client, Backoff: DefaultBackoff},
		circuit: newBreaker("nws"),
	}
}

type stationFeature struct {
	ID       string `json:"id"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		StationIdentifier string `json:"stationIdentifier"`
		StationID         string `json:"stationId"`
		Name              string `json:"name"`
		StationType       string `json:"stationType"`
	} `json:"properties"`
}

// identifier prefers the documented field, then the legacy one, then the
// last path segment of the feature URL.
func (f stationFeature) identifier() string {
	switch {
	case f.Properties.StationIdentifier != "":
		return f.Properties.StationIdentifier
	case f.Properties.StationID != "":
		return f.Properties.StationID
	}
	id := strings.TrimRight(f.ID, "/")
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

func (c *NWSClient) get(ctx context.Context, path string) (*http.Response, error) {
	return doRequestWithResilience(ctx, c.httpCfg, c.circuit, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/geo+json")
		return req, nil
	})
}

// NearestStation returns the WSR-88D site closest to lat/lon.
func (c *NWSClient) NearestStation(ctx context.Context, lat, lon float64) (Station, error) {
	resp, err := c.get(ctx, "/radar/stations")
	if err != nil {
		return Station{}, fmt.Errorf("nws radar stations unavailable: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Features []stationFeature `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Station{}, fmt.Errorf("decode radar stations: %w", err)
	}

	var (
		nearest Station
		found   bool
		minDist = math.Inf(1)
	)
	for _, f := range payload.Features {
		if f.Properties.StationType != nexradType || len(f.Geometry.Coordinates) < 2 {
			continue
		}
		// GeoJSON order is lon, lat.
		fLon, fLat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
		dist := haversineKm(lat, lon, fLat, fLon)
		if dist < minDist {
			minDist = dist
			found = true
			nearest = Station{
				StationID:  f.identifier(),
				Name:       f.Properties.Name,
				Latitude:   fLat,
				Longitude:  fLon,
				DistanceKm: dist,
			}
		}
	}

	if !found {
		return Station{}, ErrNoStation
	}
	return nearest, nil
}

// VCP returns the live volume coverage pattern of the station. A nil result
// with a nil error means the value is unavailable: empty id, non-OK status or
// a missing field.
func (c *NWSClient) VCP(ctx context.Context, stationID string) (*int, error) {
	if stationID == "" {
		return nil, nil
	}

	resp, err := c.get(ctx, "/radar/stations/"+url.PathEscape(stationID))
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Properties struct {
			RDA struct {
				Properties struct {
					VolumeCoveragePattern json.RawMessage `json:"volumeCoveragePattern"`
				} `json:"properties"`
			} `json:"rda"`
		} `json:"properties"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode radar station %s: %w", stationID, err)
	}

	code, ok := parseVCP(payload.Properties.RDA.Properties.VolumeCoveragePattern)
	if !ok {
		return nil, nil
	}
	return &code, nil
}

// parseVCP accepts a bare number or a string such as "R35".
func parseVCP(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n2, err := strconv.Atoi(strings.TrimLeft(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"))
	if err != nil {
		return 0, false
	}
	return n2, true
}
