package compliance

import (
	"context"
	"errors"
	"testing"

	"github.com/fueleu/ghg-compliance-ledger/internal/models"
	"github.com/fueleu/ghg-compliance-ledger/internal/storage/memory"
)

func newCalculatorWithRoutes(t *testing.T, routes ...models.Route) (*Calculator, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	for _, r := range routes {
		if err := store.SaveRoute(context.Background(), r); err != nil {
			t.Fatalf("seed route: %v", err)
		}
	}
	return NewCalculator(store, store), store
}

func TestComputeSurplus(t *testing.T) {
	calc, store := newCalculatorWithRoutes(t, models.Route{
		RouteID: "R002", Year: 2024, GHGIntensity: 88.0, FuelConsumption: 4800,
	})

	cb, err := calc.Compute(context.Background(), "R002", 2024)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	// (91.16 - 88.0) * 4800 * 41000 = 621,888,000
	if cb.CBGco2eq != 621888000 {
		t.Errorf("cbGco2eq = %v, want 621888000", cb.CBGco2eq)
	}

	saved, err := store.FindCB("R002", 2024)
	if err != nil {
		t.Fatalf("FindCB returned error: %v", err)
	}
	if saved == nil || saved.CBGco2eq != cb.CBGco2eq {
		t.Errorf("persisted snapshot = %+v, want %+v", saved, cb)
	}
}

func TestComputeDeficit(t *testing.T) {
	calc, _ := newCalculatorWithRoutes(t, models.Route{
		RouteID: "R003", Year: 2024, GHGIntensity: 93.5, FuelConsumption: 5100,
	})

	cb, err := calc.Compute(context.Background(), "R003", 2024)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	// (91.16 - 93.5) * 5100 * 41000 = -489,294,000
	if cb.CBGco2eq != -489294000 {
		t.Errorf("cbGco2eq = %v, want -489294000", cb.CBGco2eq)
	}
}

func TestComputeRoundsToTwoDecimals(t *testing.T) {
	calc, _ := newCalculatorWithRoutes(t, models.Route{
		RouteID: "R010", Year: 2024, GHGIntensity: 91.0, FuelConsumption: 0.0001,
	})

	cb, err := calc.Compute(context.Background(), "R010", 2024)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	// (91.16 - 91.0) * 0.0001 * 41000 = 0.656, rounded half away from zero
	if cb.CBGco2eq != 0.66 {
		t.Errorf("cbGco2eq = %v, want 0.66", cb.CBGco2eq)
	}
}

func TestComputeUnknownYearTarget(t *testing.T) {
	calc, _ := newCalculatorWithRoutes(t, models.Route{
		RouteID: "R002", Year: 2030, GHGIntensity: 88.0, FuelConsumption: 4800,
	})

	_, err := calc.Compute(context.Background(), "R002", 2030)
	if !errors.Is(err, ErrUnknownYearTarget) {
		t.Fatalf("Compute error = %v, want %v", err, ErrUnknownYearTarget)
	}
}

func TestComputeRouteNotFound(t *testing.T) {
	calc, _ := newCalculatorWithRoutes(t)

	_, err := calc.Compute(context.Background(), "GHOST", 2024)
	if !errors.Is(err, ErrRouteNotFound) {
		t.Fatalf("Compute error = %v, want %v", err, ErrRouteNotFound)
	}
}

func TestComputeIsDeterministicAndUpserts(t *testing.T) {
	calc, store := newCalculatorWithRoutes(t, models.Route{
		RouteID: "R002", Year: 2024, GHGIntensity: 88.0, FuelConsumption: 4800,
	})

	first, err := calc.Compute(context.Background(), "R002", 2024)
	if err != nil {
		t.Fatalf("first Compute returned error: %v", err)
	}
	second, err := calc.Compute(context.Background(), "R002", 2024)
	if err != nil {
		t.Fatalf("second Compute returned error: %v", err)
	}

	if first.CBGco2eq != second.CBGco2eq {
		t.Errorf("recompute changed value: %v vs %v", first.CBGco2eq, second.CBGco2eq)
	}

	// Recomputing overwrites; there is still exactly one snapshot.
	saved, err := store.FindCB("R002", 2024)
	if err != nil {
		t.Fatalf("FindCB returned error: %v", err)
	}
	if saved == nil || *saved != *second {
		t.Errorf("snapshot = %+v, want %+v", saved, second)
	}
}
