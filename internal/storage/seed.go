package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fueleu/ghg-compliance-ledger/internal/models"
)

type seedFile struct {
	Routes []seedRoute `yaml:"routes"`
}

type seedRoute struct {
	RouteID         string  `yaml:"route_id"`
	VesselType      string  `yaml:"vessel_type"`
	FuelType        string  `yaml:"fuel_type"`
	Year            int     `yaml:"year"`
	GHGIntensity    float64 `yaml:"ghg_intensity"`
	FuelConsumption float64 `yaml:"fuel_consumption"`
	Distance        float64 `yaml:"distance"`
	TotalEmissions  float64 `yaml:"total_emissions"`
	IsBaseline      bool    `yaml:"is_baseline"`
}

// RoutesFromFile reads route records from a YAML seed file. Route data
// normally arrives from the voyage-reporting subsystem; the seed file
// covers local and test deployments.
func RoutesFromFile(path string) ([]models.Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	routes := make([]models.Route, 0, len(f.Routes))
	for i, r := range f.Routes {
		if r.RouteID == "" {
			return nil, fmt.Errorf("seed route %d: route_id is required", i)
		}
		if r.Year == 0 {
			return nil, fmt.Errorf("seed route %s: year is required", r.RouteID)
		}
		routes = append(routes, models.Route{
			RouteID:         r.RouteID,
			VesselType:      r.VesselType,
			FuelType:        r.FuelType,
			Year:            r.Year,
			GHGIntensity:    r.GHGIntensity,
			FuelConsumption: r.FuelConsumption,
			Distance:        r.Distance,
			TotalEmissions:  r.TotalEmissions,
			IsBaseline:      r.IsBaseline,
		})
	}
	return routes, nil
}
