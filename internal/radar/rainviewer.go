package radar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
)

const (
	DefaultRainViewerURL = "https://api.rainviewer.com/public/weather-maps.json"
	DefaultTileHost      = "https://tilecache.rainviewer.com"

	// maxFrames is how many past frames the animation loops over.
	maxFrames = 12
)

// Frame is one radar mosaic time step.
type Frame struct {
	Time int64  `json:"time"`
	Path string `json:"path"`
}

// TileURL returns the Leaflet tile template for f on host, falling back to
// DefaultTileHost.
func TileURL(host string, f Frame) string {
	host = strings.TrimRight(host, "/")
	if host == "" {
		host = DefaultTileHost
	}
	return host + f.Path + "/256/{z}/{x}/{y}/2/1_1.png"
}

// RainViewerClient reads the RainViewer weather map index.
type RainViewerClient struct {
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewRainViewerClient returns a client for url, or DefaultRainViewerURL when empty.
func NewRainViewerClient(client *http.Client, url string) *RainViewerClient {
	if url == "" {
		url = DefaultRainViewerURL
	}
	return &RainViewerClient{
		url:     url,
		httpCfg: HTTPClientConfig{Client: client, Backoff: DefaultBackoff},
		circuit: newBreaker("rainviewer"),
	}
}

// Frames returns up to the last twelve past frames, oldest first.
func (c *RainViewerClient) Frames(ctx context.Context) ([]Frame, error) {
	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, c.url, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("rainviewer unavailable: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Radar struct {
			Past []Frame `json:"past"`
		} `json:"radar"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode rainviewer maps: %w", err)
	}

	past := payload.Radar.Past
	if len(past) > maxFrames {
		past = past[len(past)-maxFrames:]
	}
	frames := make([]Frame, len(past))
	copy(frames, past)
	return frames, nil
}
