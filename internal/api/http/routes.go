package httpapi

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/tempest-display/internal/dashboard"
	"github.com/i474232898/tempest-display/internal/prefs"
	"github.com/i474232898/tempest-display/internal/radar"
	"github.com/i474232898/tempest-display/internal/store"
	"github.com/i474232898/tempest-display/internal/units"
)

var validate = validator.New()

// Deps are the services behind the API. Radar and Locator may be nil, in
// which case the radar routes answer 503.
type Deps struct {
	Dashboard *dashboard.Service
	Prefs     *prefs.Service
	Radar     *radar.Service
	Locator   *radar.Locator
	StationID int
	Log       logrus.FieldLogger
	Now       func() time.Time
}

// Handlers serves the dashboard API.
type Handlers struct {
	deps Deps

	closeOnce sync.Once
	closing   chan struct{}
}

// NewHandlers fills in a clock and logger when deps leave them unset.
func NewHandlers(deps Deps) *Handlers {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	return &Handlers{deps: deps, closing: make(chan struct{})}
}

// Close ends every open live stream. Call it before shutting the app down.
func (h *Handlers) Close() {
	h.closeOnce.Do(func() { close(h.closing) })
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "tempest-display",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		snap, err := h.snapshot(c)
		if err != nil {
			return err
		}
		return c.JSON(snap)
	})
	v1.Get("/station", func(c *fiber.Ctx) error {
		snap, err := h.snapshot(c)
		if err != nil {
			return err
		}
		return c.JSON(snap.Station)
	})
	v1.Get("/current", func(c *fiber.Ctx) error {
		snap, err := h.snapshot(c)
		if err != nil {
			return err
		}
		return c.JSON(snap.Current)
	})
	v1.Get("/forecast", func(c *fiber.Ctx) error {
		snap, err := h.snapshot(c)
		if err != nil {
			return err
		}
		return c.JSON(snap.Forecast)
	})
	v1.Get("/hourly", func(c *fiber.Ctx) error {
		snap, err := h.snapshot(c)
		if err != nil {
			return err
		}
		return c.JSON(snap.Hourly)
	})
	v1.Get("/status", func(c *fiber.Ctx) error {
		snap, err := h.snapshot(c)
		if err != nil {
			return err
		}
		return c.JSON(snap.Status)
	})
	v1.Get("/almanac", func(c *fiber.Ctx) error {
		snap, err := h.snapshot(c)
		if err != nil {
			return err
		}
		return c.JSON(snap.Almanac)
	})

	v1.Get("/current/display", func(c *fiber.Ctx) error {
		p, err := h.preferences(c)
		if err != nil {
			return err
		}
		snap, err := h.snapshot(c)
		if err != nil {
			return err
		}
		return c.JSON(h.deps.Dashboard.Display(snap.Current, p))
	})

	v1.Get("/convert/:family", func(c *fiber.Ctx) error {
		raw := c.Query("value")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "value must be a number")
		}
		reading, err := units.Measure(units.Family(c.Params("family")), value, c.Query("unit"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(reading)
	})

	v1.Get("/preferences", func(c *fiber.Ctx) error {
		p, err := h.deps.Prefs.Get(c.UserContext(), c.Query("profile"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{"preferences": p, "themes": prefs.Themes()})
	})
	v1.Put("/preferences", func(c *fiber.Ctx) error {
		var p prefs.Preferences
		if err := c.BodyParser(&p); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid preferences body")
		}
		saved, err := h.deps.Prefs.Replace(c.UserContext(), c.Query("profile"), p)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(saved)
	})
	v1.Patch("/preferences", func(c *fiber.Ctx) error {
		var u prefs.Update
		if err := c.BodyParser(&u); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid preferences body")
		}
		saved, err := h.deps.Prefs.Patch(c.UserContext(), c.Query("profile"), u)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(saved)
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		q, err := h.history(c)
		if err != nil {
			return err
		}
		obs, err := h.deps.Dashboard.History(q.DeviceID, q.From, q.To)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{
			"deviceId":     q.DeviceID,
			"from":         q.From,
			"to":           q.To,
			"observations": obs,
		})
	})
	v1.Get("/history/summary", func(c *fiber.Ctx) error {
		q, err := h.history(c)
		if err != nil {
			return err
		}
		sum, err := h.deps.Dashboard.Summary(q.DeviceID, q.From, q.To)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(sum)
	})

	v1.Get("/radar/station", func(c *fiber.Ctx) error {
		if h.deps.Radar == nil || h.deps.Locator == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "radar disabled")
		}
		snap, err := h.snapshot(c)
		if err != nil {
			return err
		}
		at, err := h.deps.Locator.Locate(c.UserContext(), radar.Coordinates{
			Latitude:  snap.Station.Latitude,
			Longitude: snap.Station.Longitude,
		})
		if err != nil {
			return toHTTPError(err)
		}
		rc, err := h.deps.Radar.Context(c.UserContext(), at)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(rc)
	})
	v1.Get("/radar/frames", func(c *fiber.Ctx) error {
		if h.deps.Radar == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "radar disabled")
		}
		fs, err := h.deps.Radar.Frames(c.UserContext())
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fs)
	})

	v1.Get("/live", h.live)
}

func (h *Handlers) snapshot(c *fiber.Ctx) (dashboard.Snapshot, error) {
	snap, err := h.deps.Dashboard.Snapshot(c.UserContext(), h.deps.StationID)
	if err != nil {
		h.deps.Log.WithError(err).Warn("dashboard unavailable")
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return dashboard.Snapshot{}, toHTTPError(err)
		}
		return dashboard.Snapshot{}, fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return snap, nil
}

// preferences returns the saved preferences with any query overrides.
func (h *Handlers) preferences(c *fiber.Ctx) (prefs.Preferences, error) {
	var q unitsQuery
	if err := q.bind(c); err != nil {
		return prefs.Preferences{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	p, err := h.deps.Prefs.Get(c.UserContext(), q.Profile)
	if err != nil {
		return prefs.Preferences{}, toHTTPError(err)
	}
	if q.Temp != "" {
		p.TemperatureUnit = units.TemperatureUnit(q.Temp)
	}
	if q.Wind != "" {
		p.WindUnit = units.WindUnit(q.Wind)
	}
	if q.Pressure != "" {
		p.PressureUnit = units.PressureUnit(q.Pressure)
	}
	if q.Rain != "" {
		p.RainUnit = units.RainUnit(q.Rain)
	}
	return p, nil
}

// history binds the window and defaults the device to the station's own.
func (h *Handlers) history(c *fiber.Ctx) (historyQuery, error) {
	var q historyQuery
	if err := q.bind(c, h.deps.Now()); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if q.DeviceID == 0 {
		snap, err := h.snapshot(c)
		if err != nil {
			return q, err
		}
		q.DeviceID = snap.Station.DeviceID
	}
	return q, nil
}

func (h *Handlers) deviceID(c *fiber.Ctx) (int, error) {
	if id := c.QueryInt("device_id", 0); id > 0 {
		return id, nil
	}
	snap, err := h.snapshot(c)
	if err != nil {
		return 0, err
	}
	return snap.Station.DeviceID, nil
}

// toHTTPError maps domain errors onto status codes.
func toHTTPError(err error) error {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "no observations for requested range")
	case errors.Is(err, prefs.ErrInvalid):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, units.ErrUnknownFamily):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, radar.ErrNoStation), errors.Is(err, radar.ErrNoLocation):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
