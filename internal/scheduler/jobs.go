package scheduler

import (
	"context"

	"github.com/i474232898/tempest-display/internal/dashboard"
	"github.com/i474232898/tempest-display/internal/radar"
)

// DashboardJob reloads the cached snapshot of a station.
func DashboardJob(svc *dashboard.Service, stationID int) Job {
	return Job{
		Name: "dashboard",
		Run: func(ctx context.Context) error {
			_, err := svc.Load(ctx, stationID)
			return err
		},
	}
}

// RadarFramesJob refreshes the cached radar animation.
func RadarFramesJob(svc *radar.Service) Job {
	return Job{
		Name: "radar-frames",
		Run: func(ctx context.Context) error {
			_, err := svc.RefreshFrames(ctx)
			return err
		},
	}
}
