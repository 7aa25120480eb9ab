package snow

import "time"

// Quality labels. Scrapers may report free text; scoring matches case-insensitively.
const (
	QualityPowder   = "Powder"
	QualityFresh    = "Fresh"
	QualityPacked   = "Packed"
	QualityVariable = "Variable"
	QualityIcy      = "Icy"
	QualityWet      = "Wet"
	QualityUnknown  = "Unknown"
)

// Conditions is a snapshot of the snow at one resort. Depths are in cm;
// nil means the source did not report the value.
type Conditions struct {
	ResortID    string    `json:"resort_id"`
	DateUpdated time.Time `json:"date_updated"`
	SnowBase    *int      `json:"snow_base"`
	SnowSummit  *int      `json:"snow_summit"`
	NewSnow24h  *int      `json:"new_snow_24h"`
	NewSnow7d   *int      `json:"new_snow_7d"`
	SnowQuality string    `json:"snow_quality"`
	LiftsOpen   *int      `json:"lifts_open"`
	RunsOpen    *int      `json:"runs_open"`

	// Source that produced these conditions.
	Source string `json:"source,omitempty"`
}

func positive(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

func val(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
