package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/resort-picker/internal/fetch"
)

// ErrNoConnection is returned when the timetable has no connection.
var ErrNoConnection = errors.New("no connection found")

// DepartureTime is the time of day journeys are planned from.
const DepartureTime = "08:00"

var busCategories = map[string]bool{"B": true, "BUS": true, "NFB": true}

// OpenDataClient queries the Swiss public transport API (transport.opendata.ch).
type OpenDataClient struct {
	baseURL string
	client  *fetch.Client
}

func NewOpenDataClient(client *http.Client) *OpenDataClient {
	return &OpenDataClient{
		baseURL: "http://transport.opendata.ch/v1/connections",
		client:  fetch.NewClient("transport-opendata", client),
	}
}

// WithBaseURL overrides the connections endpoint.
func (c *OpenDataClient) WithBaseURL(u string) *OpenDataClient {
	c.baseURL = u
	return c
}

type connectionsPayload struct {
	Connections []connection `json:"connections"`
}

type connection struct {
	From struct {
		Departure string `json:"departure"`
	} `json:"from"`
	To struct {
		Arrival string `json:"arrival"`
	} `json:"to"`
	Duration  string    `json:"duration"`
	Transfers int       `json:"transfers"`
	Sections  []section `json:"sections"`
}

type section struct {
	Journey *struct {
		Category string `json:"category"`
		Name     string `json:"name"`
	} `json:"journey"`
	Departure struct {
		Station struct {
			Name string `json:"name"`
		} `json:"station"`
		Departure string `json:"departure"`
	} `json:"departure"`
	Arrival struct {
		Station struct {
			Name string `json:"name"`
		} `json:"station"`
		Arrival string `json:"arrival"`
	} `json:"arrival"`
}

// Connection returns the first connection from -> to departing at
// DepartureTime on date.
func (c *OpenDataClient) Connection(ctx context.Context, from, to string, date time.Time) (*Journey, error) {
	values := url.Values{}
	values.Set("from", from)
	values.Set("to", to)
	values.Set("date", date.Format("2006-01-02"))
	values.Set("time", DepartureTime)
	values.Set("limit", "3")

	var payload connectionsPayload
	if err := c.client.GetJSON(ctx, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), &payload); err != nil {
		return nil, err
	}
	if len(payload.Connections) == 0 {
		return nil, fmt.Errorf("%w from %s to %s", ErrNoConnection, from, to)
	}

	return parseConnection(payload.Connections[0])
}

func parseConnection(conn connection) (*Journey, error) {
	if conn.From.Departure == "" || conn.To.Arrival == "" {
		return nil, fmt.Errorf("connection without departure or arrival time")
	}

	dep, err := parseTimestamp(conn.From.Departure)
	if err != nil {
		return nil, err
	}
	arr, err := parseTimestamp(conn.To.Arrival)
	if err != nil {
		return nil, err
	}

	j := &Journey{
		DepartureTime:   dep,
		ArrivalTime:     arr,
		DurationMinutes: parseDuration(conn.Duration),
		Changes:         conn.Transfers,
	}

	for _, s := range conn.Sections {
		// Walking sections carry no journey.
		if s.Journey == nil {
			continue
		}
		mode := ModeTrain
		if busCategories[strings.ToUpper(s.Journey.Category)] {
			mode = ModeBus
		}
		segDep, _ := parseTimestamp(s.Departure.Departure)
		segArr, _ := parseTimestamp(s.Arrival.Arrival)
		j.Segments = append(j.Segments, Segment{
			Type:        mode,
			FromStation: orUnknown(s.Departure.Station.Name),
			ToStation:   orUnknown(s.Arrival.Station.Name),
			Departure:   segDep,
			Arrival:     segArr,
			Line:        s.Journey.Name,
		})
	}

	return j, nil
}

// parseTimestamp accepts "2026-01-10T08:02:00+0100" as well as RFC3339.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse("2006-01-02T15:04:05-0700", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if len(s) >= 19 {
		if t, err := time.Parse("2006-01-02T15:04:05", s[:19]); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// parseDuration converts "00d02:45:00" into minutes; malformed input yields 0.
func parseDuration(s string) int {
	days := 0
	clock := s
	if d, rest, ok := strings.Cut(s, "d"); ok {
		n, err := strconv.Atoi(d)
		if err != nil {
			return 0
		}
		days, clock = n, rest
	}

	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return 0
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return days*24*60 + h*60 + m
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
