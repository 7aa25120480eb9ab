package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/resort-picker/internal/recommend"
)

const invalidDateMessage = "Invalid date format. Use YYYY-MM-DD"

// recommendationRequest is the body of both recommendation endpoints.
type recommendationRequest struct {
	StartLocation      string `json:"start_location" validate:"omitempty,max=100"`
	TargetDate         string `json:"target_date"`
	NumRecommendations *int   `json:"num_recommendations" validate:"omitempty,min=1,max=50"`
}

type transportQuery struct {
	ResortID     string `validate:"required"`
	FromLocation string `validate:"required,max=100"`
}

func bindRecommendationRequest(c *fiber.Ctx) (recommend.Request, error) {
	var body recommendationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return recommend.Request{}, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := validate.Struct(body); err != nil {
		return recommend.Request{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	date, err := parseDate(body.TargetDate)
	if err != nil {
		return recommend.Request{}, err
	}

	req := recommend.Request{Origin: body.StartLocation, Date: date}
	if body.NumRecommendations != nil {
		req.Count = *body.NumRecommendations
	}
	return req, nil
}

func parseDate(s string) (time.Time, error) {
	date, err := recommend.ParseDate(s)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, invalidDateMessage)
	}
	return date, nil
}
