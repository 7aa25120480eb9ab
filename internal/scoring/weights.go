package scoring

// Weights defines the contribution of each sub-score to the total. They sum to 1.
type Weights struct {
	Weather   float64 `json:"weather"`
	Snow      float64 `json:"snow"`
	Transport float64 `json:"transport"`
	Size      float64 `json:"size"`
}

// DefaultWeights favours snow, then resort size.
func DefaultWeights() Weights {
	return Weights{
		Weather:   0.20,
		Snow:      0.45,
		Transport: 0.10,
		Size:      0.25,
	}
}

// Scores applied when an input is missing.
const (
	NeutralWeatherScore       = 5.0
	SnowUnavailablePenalty    = 2.5 // missing snow data is itself a bad sign
	TransportUnavailableScore = 3.0
	NeutralSizeScore          = 5.0
)
