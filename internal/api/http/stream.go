package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/i474232898/resort-picker/internal/progress"
	"github.com/i474232898/resort-picker/internal/recommend"
)

// event is one server-sent message.
type event struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
	Data      any    `json:"data"`
}

type streamResult struct {
	resp *recommend.Response
	err  error
}

// streamRecommendations sends progress updates as SSE followed by the result.
// Generation keeps running if the client disconnects.
func (d Deps) streamRecommendations(c *fiber.Ctx) error {
	req, err := bindRecommendationRequest(c)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	tracker := progress.NewTracker(progress.DefaultBuffer)
	results := make(chan streamResult, 1)

	go func() {
		defer tracker.Close()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("ERROR: stream %s: generation panicked: %v", requestID, r)
				results <- streamResult{err: fmt.Errorf("recommendation generation failed: %v", r)}
			}
		}()
		resp, err := d.Recommender.GenerateWithProgress(context.Background(), req, tracker)
		results <- streamResult{resp: resp, err: err}
	}()

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")
	c.Set(requestIDHeader, requestID)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		for u := range tracker.Updates() {
			if err := writeEvent(w, event{Type: "progress", RequestID: requestID, Data: u}); err != nil {
				log.Printf("WARN: stream %s abandoned: %v", requestID, err)
				tracker.Abandon()
				return
			}
		}

		res := <-results
		if res.err != nil {
			log.Printf("ERROR: stream %s: %v", requestID, res.err)
			_ = writeEvent(w, event{Type: "error", RequestID: requestID, Data: fiber.Map{"message": res.err.Error()}})
			return
		}
		_ = writeEvent(w, event{Type: "result", RequestID: requestID, Data: res.resp})
	}))

	return nil
}

func writeEvent(w *bufio.Writer, e event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}
