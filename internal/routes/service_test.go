package routes

import (
	"context"
	"errors"
	"testing"

	"github.com/fueleu/ghg-compliance-ledger/internal/models"
	"github.com/fueleu/ghg-compliance-ledger/internal/storage/memory"
)

func newServiceWithRoutes(t *testing.T, routes ...models.Route) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	for _, r := range routes {
		if err := store.SaveRoute(context.Background(), r); err != nil {
			t.Fatalf("seed route: %v", err)
		}
	}
	return NewService(store), store
}

func TestComparisonAnnotatesRoutes(t *testing.T) {
	svc, _ := newServiceWithRoutes(t,
		models.Route{RouteID: "BASE", Year: 2025, GHGIntensity: 90.0, IsBaseline: true},
		models.Route{RouteID: "R001", Year: 2025, GHGIntensity: 91.8},
		models.Route{RouteID: "R002", Year: 2025, GHGIntensity: 87.3},
	)

	data, err := svc.Comparison()
	if err != nil {
		t.Fatalf("Comparison returned error: %v", err)
	}

	if data.Baseline.RouteID != "BASE" {
		t.Errorf("baseline = %s, want BASE", data.Baseline.RouteID)
	}
	if len(data.ComparisonRoutes) != 2 {
		t.Fatalf("expected 2 comparison routes, got %d", len(data.ComparisonRoutes))
	}

	byID := make(map[string]models.ComparisonRoute)
	for _, r := range data.ComparisonRoutes {
		byID[r.RouteID] = r
	}

	// 91.8 / 90.0 - 1 = +2%; above the 89.3368 target.
	if got := byID["R001"].PercentDiff; got != 2 {
		t.Errorf("R001 percentDiff = %v, want 2", got)
	}
	if byID["R001"].Compliant {
		t.Error("R001 should not be compliant")
	}

	// 87.3 / 90.0 - 1 = -3%; below the target.
	if got := byID["R002"].PercentDiff; got != -3 {
		t.Errorf("R002 percentDiff = %v, want -3", got)
	}
	if !byID["R002"].Compliant {
		t.Error("R002 should be compliant")
	}
}

func TestComparisonExcludesBaselineItself(t *testing.T) {
	svc, _ := newServiceWithRoutes(t,
		models.Route{RouteID: "BASE", Year: 2025, GHGIntensity: 90.0, IsBaseline: true},
	)

	data, err := svc.Comparison()
	if err != nil {
		t.Fatalf("Comparison returned error: %v", err)
	}
	if len(data.ComparisonRoutes) != 0 {
		t.Errorf("expected no comparison routes, got %d", len(data.ComparisonRoutes))
	}
}

func TestComparisonRequiresBaseline(t *testing.T) {
	svc, _ := newServiceWithRoutes(t,
		models.Route{RouteID: "R001", Year: 2025, GHGIntensity: 91.8},
	)

	_, err := svc.Comparison()
	if !errors.Is(err, ErrNoBaseline) {
		t.Fatalf("Comparison error = %v, want %v", err, ErrNoBaseline)
	}
}

func TestSetBaselineSwapsFlag(t *testing.T) {
	svc, store := newServiceWithRoutes(t,
		models.Route{RouteID: "R001", Year: 2025, GHGIntensity: 90.0, IsBaseline: true},
		models.Route{RouteID: "R002", Year: 2025, GHGIntensity: 87.3},
	)

	if err := svc.SetBaseline(context.Background(), "R002"); err != nil {
		t.Fatalf("SetBaseline returned error: %v", err)
	}

	baseline, err := store.FindBaseline()
	if err != nil {
		t.Fatalf("FindBaseline returned error: %v", err)
	}
	if baseline == nil || baseline.RouteID != "R002" {
		t.Errorf("baseline = %+v, want R002", baseline)
	}

	all, _ := store.GetAll()
	count := 0
	for _, r := range all {
		if r.IsBaseline {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one baseline, got %d", count)
	}
}

func TestSetBaselineUnknownRoute(t *testing.T) {
	svc, _ := newServiceWithRoutes(t)

	if err := svc.SetBaseline(context.Background(), "GHOST"); err == nil {
		t.Fatal("SetBaseline accepted an unknown route")
	}
}
