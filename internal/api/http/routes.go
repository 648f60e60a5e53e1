package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/events"
	"github.com/i474232898/weather-dashboard/internal/state"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/view"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// Dashboard groups the components the HTTP layer drives.
type Dashboard struct {
	Bus    *events.Bus
	State  *state.AppState
	Panel  *view.Panel
	Days   *view.DayPicker
	Units  *view.UnitsPicker
	Search *view.Search
	Recent *store.RecentCities
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d *Dashboard) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		_, _, selected := d.State.City()
		return c.JSON(fiber.Map{
			"status":       "ok",
			"citySelected": selected,
			"refreshing":   d.State.Refreshing(),
		})
	})

	v1.Get("/cities", func(c *fiber.Ctx) error {
		results, err := d.Search.Search(c.UserContext(), c.Query("q"))
		switch {
		case errors.Is(err, view.ErrEmptyQuery):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, weather.ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, view.NoResultsMessage)
		case errors.Is(err, view.ErrStaleSearch):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case err != nil:
			return fetchError(err)
		}
		return c.JSON(fiber.Map{"results": results})
	})

	v1.Get("/cities/recent", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"cities": d.Recent.List()})
	})

	v1.Post("/city", func(c *fiber.Ctx) error {
		var req chooseCityRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}

		err := d.Search.Choose(c.UserContext(), req.Name, weather.Coordinates{Latitude: *req.Lat, Longitude: *req.Lon})
		if err != nil {
			return fetchError(err)
		}
		return c.JSON(d.Panel.View())
	})

	v1.Get("/weather", func(c *fiber.Ctx) error {
		if !d.Panel.Ready() {
			return fiber.NewError(fiber.StatusNotFound, "no city selected")
		}
		return c.JSON(d.Panel.View())
	})

	v1.Get("/units", func(c *fiber.Ctx) error {
		return c.JSON(d.Units.View())
	})

	v1.Patch("/units", func(c *fiber.Ctx) error {
		var patch weather.UnitsPatch
		if err := bindJSON(c, &patch); err != nil {
			return err
		}
		if patch.Empty() {
			return fiber.NewError(fiber.StatusBadRequest, "no unit given")
		}
		return unitsResponse(c, d, d.Units.Set(c.UserContext(), patch))
	})

	v1.Post("/units/toggle", func(c *fiber.Ctx) error {
		_, err := d.Units.Toggle(c.UserContext())
		return unitsResponse(c, d, err)
	})

	v1.Get("/days", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"days": d.Days.Options()})
	})

	v1.Post("/days/select", func(c *fiber.Ctx) error {
		var req selectDayRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		if err := d.Days.Select(req.Date); err != nil {
			if errors.Is(err, view.ErrUnknownDay) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return err
		}
		return c.JSON(d.Panel.View())
	})

	v1.Get("/events", streamEvents(d.Bus))
}

type chooseCityRequest struct {
	Name string   `json:"name" validate:"required"`
	Lat  *float64 `json:"lat" validate:"required,latitude"`
	Lon  *float64 `json:"lon" validate:"required,longitude"`
}

type selectDayRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// unitsResponse reports the new preferences. A failed re-fetch does not undo
// the change, so the preferences are returned alongside the error banner.
func unitsResponse(c *fiber.Ctx, d *Dashboard, err error) error {
	if err == nil {
		return c.JSON(d.Units.View())
	}
	status := fetchError(err).Code
	return c.Status(status).JSON(fiber.Map{
		"error":   true,
		"message": "Could not refresh the forecast in the new units. Showing the last loaded forecast.",
		"units":   d.Units.View(),
	})
}

// fetchError maps a failed upstream call to an HTTP error.
func fetchError(err error) *fiber.Error {
	var ue *weather.UpstreamError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	case errors.As(err, &ue):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, view.ErrEmptyQuery):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
}
