package transport

import "time"

// Mode is the vehicle type of a journey segment.
type Mode string

const (
	ModeTrain Mode = "train"
	ModeBus   Mode = "bus"
)

// Segment is one vehicle leg of a journey.
type Segment struct {
	Type        Mode      `json:"type"`
	FromStation string    `json:"from_station"`
	ToStation   string    `json:"to_station"`
	Departure   time.Time `json:"departure"`
	Arrival     time.Time `json:"arrival"`
	Line        string    `json:"line"`
}

// Journey is a single public transport itinerary.
type Journey struct {
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Changes         int       `json:"changes"`
	Segments        []Segment `json:"segments"`
}

// Hours returns the journey duration in hours.
func (j *Journey) Hours() float64 {
	return float64(j.DurationMinutes) / 60
}

// withExtraMinutes returns a copy of j that arrives extra minutes later.
func (j *Journey) withExtraMinutes(extra int) *Journey {
	cp := *j
	cp.Segments = append([]Segment(nil), j.Segments...)
	cp.DurationMinutes += extra
	cp.ArrivalTime = j.ArrivalTime.Add(time.Duration(extra) * time.Minute)
	return &cp
}
