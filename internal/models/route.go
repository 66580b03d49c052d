package models

// Route represents one ship-route measurement for a reporting year.
// Route records are produced by the voyage-reporting subsystem; this
// service only reads them (and ingests seed data for local setups).
type Route struct {
	ID              int64   `json:"id"`
	RouteID         string  `json:"routeId"`
	VesselType      string  `json:"vesselType"`
	FuelType        string  `json:"fuelType"`
	Year            int     `json:"year"`
	GHGIntensity    float64 `json:"ghgIntensity"`    // gCO2eq/MJ, measured
	FuelConsumption float64 `json:"fuelConsumption"` // tonnes
	Distance        float64 `json:"distance"`        // km
	TotalEmissions  float64 `json:"totalEmissions"`  // tonnes
	IsBaseline      bool    `json:"isBaseline"`
}

// ComparisonRoute is a route annotated against the current baseline.
type ComparisonRoute struct {
	Route
	PercentDiff float64 `json:"percentDiff"` // intensity diff vs baseline, percent
	Compliant   bool    `json:"compliant"`   // intensity at or below the target
}

// ComparisonData is the payload of the route comparison view.
type ComparisonData struct {
	Baseline         Route             `json:"baseline"`
	ComparisonRoutes []ComparisonRoute `json:"comparisonRoutes"`
}
