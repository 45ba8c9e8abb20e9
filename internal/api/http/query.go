package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// defaultWindow is the history span used when from/to are omitted.
const defaultWindow = time.Hour

// unitsQuery overrides saved preferences for one request.
type unitsQuery struct {
	Profile  string `query:"profile"`
	Temp     string `query:"temp" validate:"omitempty,oneof=C F"`
	Wind     string `query:"wind" validate:"omitempty,oneof=ms mph kph kts"`
	Pressure string `query:"pressure" validate:"omitempty,oneof=mb inHg hPa"`
	Rain     string `query:"rain" validate:"omitempty,oneof=mm in"`
}

func (q *unitsQuery) bind(c *fiber.Ctx) error {
	if err := c.QueryParser(q); err != nil {
		return err
	}
	return validate.Struct(q)
}

// historyQuery holds query parameters for the history endpoints.
type historyQuery struct {
	DeviceID int       `validate:"min=0"`
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx, now time.Time) error {
	h.DeviceID = c.QueryInt("device_id", 0)

	h.To = now.UTC()
	if s := c.Query("to"); s != "" {
		to, err := parseTime(s)
		if err != nil {
			return err
		}
		h.To = to
	}

	h.From = h.To.Add(-defaultWindow)
	if s := c.Query("from"); s != "" {
		from, err := parseTime(s)
		if err != nil {
			return err
		}
		h.From = from
	}

	return validate.Struct(h)
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
