package httpapi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/i474232898/tempest-display/internal/dashboard"
	"github.com/i474232898/tempest-display/internal/weather"
)

const (
	// liveBuffer is how many observations a slow client may fall behind
	// before newer ones are dropped.
	liveBuffer = 16

	keepAliveInterval = 15 * time.Second
)

// liveEvent is the data of one "observation" event.
type liveEvent struct {
	DeviceID    int                 `json:"deviceId"`
	Observation weather.Observation `json:"observation"`
	Display     dashboard.Display   `json:"display"`
}

// live streams observations as Server-Sent Events. Units follow the saved
// preferences and the same query overrides as /current/display. limit ends
// the stream after that many events.
func (h *Handlers) live(c *fiber.Ctx) error {
	p, err := h.preferences(c)
	if err != nil {
		return err
	}
	deviceID, err := h.deviceID(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must not be negative")
	}

	events := make(chan weather.Observation, liveBuffer)
	unsubscribe, err := h.deps.Dashboard.Subscribe(deviceID, func(obs weather.Observation) {
		select {
		case events <- obs:
		default:
		}
	})
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}

	log := h.deps.Log.WithField("device_id", deviceID)
	log.Debug("live stream opened")

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			unsubscribe()
			log.Debug("live stream closed")
		}()

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		sent := 0
		for {
			select {
			case obs := <-events:
				data, err := json.Marshal(liveEvent{
					DeviceID:    deviceID,
					Observation: obs,
					Display:     dashboard.Render(obs, p, h.deps.Now()),
				})
				if err != nil {
					log.WithError(err).Error("encode live event")
					return
				}
				fmt.Fprintf(w, "event: observation\ndata: %s\n\n", data)
				// A failed flush means the client went away.
				if err := w.Flush(); err != nil {
					return
				}
				sent++
				if limit > 0 && sent >= limit {
					return
				}
			case <-keepAlive.C:
				fmt.Fprint(w, ": ping\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			case <-h.closing:
				return
			}
		}
	}))
	return nil
}
