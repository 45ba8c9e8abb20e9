package radar

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Context is the radar information shown next to a station.
type Context struct {
	Station Station `json:"station"`
	VCP     *VCP    `json:"vcp,omitempty"`
}

// FrameSet is the cached animation with ready-to-use tile templates.
type FrameSet struct {
	Frames      []Frame   `json:"frames"`
	Tiles       []string  `json:"tiles"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// Service caches the nearest radar site per location and the latest frames.
type Service struct {
	nws      *NWSClient
	rv       *RainViewerClient
	tileHost string
	log      logrus.FieldLogger
	now      func() time.Time

	mu       sync.RWMutex
	stations map[Coordinates]Station
	frames   *FrameSet
}

func NewService(nws *NWSClient, rv *RainViewerClient, tileHost string, log logrus.FieldLogger) *Service {
	return &Service{
		nws:      nws,
		rv:       rv,
		tileHost: tileHost,
		log:      log,
		now:      time.Now,
		stations: make(map[Coordinates]Station),
	}
}

// Context returns the nearest NEXRAD site for at and its live VCP. The site
// lookup is cached; the VCP is always fetched fresh. A VCP lookup failure is
// logged and leaves VCP empty.
func (s *Service) Context(ctx context.Context, at Coordinates) (Context, error) {
	s.mu.RLock()
	st, ok := s.stations[at]
	s.mu.RUnlock()

	if !ok {
		var err error
		st, err = s.nws.NearestStation(ctx, at.Latitude, at.Longitude)
		if err != nil {
			return Context{}, err
		}
		s.mu.Lock()
		s.stations[at] = st
		s.mu.Unlock()
	}

	out := Context{Station: st}
	code, err := s.nws.VCP(ctx, st.StationID)
	if err != nil {
		s.log.WithError(err).WithField("radar_station", st.StationID).Warn("vcp lookup failed")
		return out, nil
	}
	if code != nil {
		info := VCPInfo(*code)
		out.VCP = &info
	}
	return out, nil
}

// Frames returns the cached frame set, fetching it on first use.
func (s *Service) Frames(ctx context.Context) (FrameSet, error) {
	s.mu.RLock()
	fs := s.frames
	s.mu.RUnlock()
	if fs != nil {
		return *fs, nil
	}
	return s.RefreshFrames(ctx)
}

// RefreshFrames fetches the latest frames and replaces the cache. On failure
// the previous frames stay cached.
func (s *Service) RefreshFrames(ctx context.Context) (FrameSet, error) {
	frames, err := s.rv.Frames(ctx)
	if err != nil {
		return FrameSet{}, err
	}
	tiles := make([]string, len(frames))
	for i, f := range frames {
		tiles[i] = TileURL(s.tileHost, f)
	}
	fs := &FrameSet{Frames: frames, Tiles: tiles, RefreshedAt: s.now().UTC()}

	s.mu.Lock()
	s.frames = fs
	s.mu.Unlock()

	s.log.WithField("frames", len(frames)).Debug("radar frames refreshed")
	return *fs, nil
}
