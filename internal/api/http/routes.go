package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/resort-picker/internal/progress"
	"github.com/i474232898/resort-picker/internal/recommend"
	"github.com/i474232898/resort-picker/internal/resort"
	"github.com/i474232898/resort-picker/internal/transport"
	"github.com/i474232898/resort-picker/internal/weather"
)

var validate = validator.New()

const requestIDHeader = "X-Request-ID"

type Recommender interface {
	Generate(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	GenerateWithProgress(ctx context.Context, req recommend.Request, p progress.Reporter) (*recommend.Response, error)
	Details(ctx context.Context, resortID, origin string, date time.Time) (*recommend.Recommendation, error)
	Explain(ctx context.Context, resortID string, date time.Time) (string, error)
	UpcomingSaturday() time.Time
	Origin() string
}

type Catalog interface {
	All() []resort.Resort
	ByID(id string) (resort.Resort, error)
	ByRegion(region string) []resort.Resort
	ByCanton(canton string) []resort.Resort
	Len() int
}

type WeatherLookup interface {
	GetForecast(ctx context.Context, lat, lon float64, date time.Time) *weather.Forecast
	Configured() bool
}

type TransportLookup interface {
	GetResortJourney(ctx context.Context, origin string, r resort.Resort, date time.Time) *transport.Journey
}

// Deps are the collaborators served over HTTP.
type Deps struct {
	Resorts     Catalog
	Recommender Recommender
	Weather     WeatherLookup
	Transport   TransportLookup

	// SummaryConfigured reports whether narrative summaries use the LLM.
	SummaryConfigured bool
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
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "message": "Magic Pass Resort Picker API"})
	})
	app.Get("/health", d.health)

	api := app.Group("/api")

	api.Get("/resorts", d.listResorts)
	api.Get("/resorts/:id", func(c *fiber.Ctx) error {
		r, err := d.Resorts.ByID(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Resort not found")
		}
		return c.JSON(r)
	})

	api.Post("/recommendations", d.recommendations)
	api.Post("/recommendations/stream", d.streamRecommendations)
	api.Get("/recommendations/:id", d.resortRecommendation)
	api.Get("/recommendations/:id/explain", d.explain)

	api.Get("/weather/:id", d.resortWeather)
	api.Get("/transport", d.resortTransport)
}

func (d Deps) health(c *fiber.Ctx) error {
	services := fiber.Map{
		"weather":   configured(d.Weather != nil && d.Weather.Configured()),
		"llm":       configured(d.SummaryConfigured),
		"transport": "ok",
	}

	status := "ok"
	if n := d.Resorts.Len(); n > 0 {
		services["resorts"] = fmt.Sprintf("ok (%d resorts loaded)", n)
	} else {
		services["resorts"] = "error: no resorts loaded"
		status = "degraded"
	}

	return c.JSON(fiber.Map{"status": status, "services": services})
}

func configured(ok bool) string {
	if ok {
		return "ok"
	}
	return "not configured"
}

func (d Deps) listResorts(c *fiber.Ctx) error {
	region, canton := c.Query("region"), c.Query("canton")

	var list []resort.Resort
	switch {
	case region != "":
		list = d.Resorts.ByRegion(region)
	case canton != "":
		list = d.Resorts.ByCanton(canton)
	default:
		list = d.Resorts.All()
	}

	if region != "" && canton != "" {
		filtered := list[:0:0]
		for _, r := range list {
			if strings.EqualFold(r.Canton, canton) {
				filtered = append(filtered, r)
			}
		}
		list = filtered
	}
	if list == nil {
		list = []resort.Resort{}
	}
	return c.JSON(list)
}

func (d Deps) recommendations(c *fiber.Ctx) error {
	req, err := bindRecommendationRequest(c)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	c.Set(requestIDHeader, requestID)

	resp, err := d.Recommender.Generate(c.UserContext(), req)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate recommendations")
	}
	return c.JSON(resp)
}

func (d Deps) resortRecommendation(c *fiber.Ctx) error {
	date, err := parseDate(c.Query("target_date"))
	if err != nil {
		return err
	}

	rec, err := d.Recommender.Details(c.UserContext(), c.Params("id"), "", date)
	if err != nil {
		return lookupError(err, "failed to score resort")
	}
	return c.JSON(rec)
}

func (d Deps) explain(c *fiber.Ctx) error {
	date, err := parseDate(c.Query("target_date"))
	if err != nil {
		return err
	}

	id := c.Params("id")
	text, err := d.Recommender.Explain(c.UserContext(), id, date)
	if err != nil {
		return lookupError(err, "failed to explain resort")
	}
	return c.JSON(fiber.Map{"resort_id": id, "explanation": text})
}

func (d Deps) resortWeather(c *fiber.Ctx) error {
	r, err := d.Resorts.ByID(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Resort not found")
	}

	date, err := d.dateOrSaturday(c.Query("target_date"))
	if err != nil {
		return err
	}

	f := d.Weather.GetForecast(c.UserContext(), r.Coordinates.Latitude, r.Coordinates.Longitude, date)
	if f == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Weather data temporarily unavailable")
	}
	return c.JSON(f)
}

func (d Deps) resortTransport(c *fiber.Ctx) error {
	q := transportQuery{
		ResortID:     c.Query("resort_id"),
		FromLocation: c.Query("from_location", d.Recommender.Origin()),
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	r, err := d.Resorts.ByID(q.ResortID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Resort not found")
	}

	date, err := d.dateOrSaturday(c.Query("target_date"))
	if err != nil {
		return err
	}

	j := d.Transport.GetResortJourney(c.UserContext(), q.FromLocation, r, date)
	if j == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Transport data temporarily unavailable")
	}
	return c.JSON(j)
}

func (d Deps) dateOrSaturday(s string) (time.Time, error) {
	date, err := parseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	if date.IsZero() {
		date = d.Recommender.UpcomingSaturday()
	}
	return date, nil
}

func lookupError(err error, msg string) error {
	if errors.Is(err, recommend.ErrResortNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Resort not found")
	}
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}
