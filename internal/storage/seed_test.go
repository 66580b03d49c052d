package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRoutesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	content := `routes:
  - route_id: R001
    vessel_type: Container
    fuel_type: HFO
    year: 2024
    ghg_intensity: 91.2
    fuel_consumption: 5200
    distance: 12000
    total_emissions: 4800
    is_baseline: true
  - route_id: R002
    vessel_type: BulkCarrier
    fuel_type: LNG
    year: 2024
    ghg_intensity: 88.0
    fuel_consumption: 4800
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	routes, err := RoutesFromFile(path)
	if err != nil {
		t.Fatalf("RoutesFromFile returned error: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	if routes[0].RouteID != "R001" || !routes[0].IsBaseline {
		t.Errorf("first route = %+v, want R001 baseline", routes[0])
	}
	if routes[1].GHGIntensity != 88.0 || routes[1].FuelConsumption != 4800 {
		t.Errorf("second route = %+v, want intensity 88.0 and fuel 4800", routes[1])
	}
}

func TestRoutesFromFileRejectsMissingRouteID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	content := `routes:
  - year: 2024
    ghg_intensity: 88.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	if _, err := RoutesFromFile(path); err == nil {
		t.Fatal("RoutesFromFile accepted a route without route_id")
	}
}

func TestRoutesFromFileMissingFile(t *testing.T) {
	if _, err := RoutesFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("RoutesFromFile accepted a missing file")
	}
}
