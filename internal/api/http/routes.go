package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/metpoll/met-sensor-poller/internal/forecast"
	"github.com/metpoll/met-sensor-poller/internal/poller"
	"github.com/metpoll/met-sensor-poller/internal/sensor"
	"github.com/metpoll/met-sensor-poller/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the read-only HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, set *sensor.Set, history *store.History, p *poller.Poller) {
	v1 := app.Group("/api/v1")

	v1.Get("/sensors", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"sensors": set.States()})
	})

	v1.Get("/sensors/:type", func(c *fiber.Ctx) error {
		ft, err := forecast.ParseFieldType(c.Params("type"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		st, ok := set.Get(ft)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "field type is not monitored")
		}
		return c.JSON(st)
	})

	v1.Get("/sensors/:type/history", func(c *fiber.Ctx) error {
		ft, err := forecast.ParseFieldType(c.Params("type"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		states, err := history.Range(ft, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no recorded states for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read sensor history")
		}

		return c.JSON(fiber.Map{
			"fieldType": ft,
			"from":      req.From,
			"to":        req.To,
			"states":    states,
		})
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		at := time.Now().UTC()
		if s := c.Query("at"); s != "" {
			parsed, err := parseTime(s)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			at = parsed
		}

		candidates := p.CandidatesAt(at)
		if len(candidates) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "no eligible forecast entry")
		}

		selected := candidates[0]
		fields := make(map[forecast.FieldType]string, len(selected.Fields))
		for ft, v := range selected.Fields {
			fields[ft] = v.State()
		}

		return c.JSON(fiber.Map{
			"target":    at.Add(p.ForecastOffset()),
			"validFrom": selected.ValidFrom,
			"validTo":   selected.ValidTo,
			"fields":    fields,
		})
	})
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
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
