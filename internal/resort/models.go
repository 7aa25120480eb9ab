package resort

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// AccessInfo describes how the resort is reached by public transport.
type AccessInfo struct {
	NearestStation         string `json:"nearest_station" validate:"required"`
	PostbusRequired        bool   `json:"postbus_required"`
	PostbusDurationMinutes *int   `json:"postbus_duration_minutes,omitempty" validate:"omitempty,gte=0"`
}

// Resort is static reference data loaded once per process.
type Resort struct {
	ID               string      `json:"id" validate:"required"`
	Name             string      `json:"name" validate:"required"`
	Region           string      `json:"region" validate:"required"`
	Canton           string      `json:"canton,omitempty"` // empty for French/Italian resorts
	Country          string      `json:"country"`
	Coordinates      Coordinates `json:"coordinates"`
	ElevationBase    int         `json:"elevation_base"`
	ElevationTop     int         `json:"elevation_top" validate:"gtefield=ElevationBase"`
	Access           AccessInfo  `json:"access"`
	Website          string      `json:"website,omitempty" validate:"omitempty,url"`
	MagicPassValid   bool        `json:"magic_pass_valid"`
	SnowForecastSlug string      `json:"snow_forecast_slug,omitempty"`

	// SkiableTerrainKm is nil when the size of the ski area is unknown.
	SkiableTerrainKm *float64 `json:"skiable_terrain_km,omitempty" validate:"omitempty,gte=0"`
}
