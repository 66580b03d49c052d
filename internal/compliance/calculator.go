package compliance

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fueleu/ghg-compliance-ledger/internal/interfaces"
	"github.com/fueleu/ghg-compliance-ledger/internal/models"
	"github.com/fueleu/ghg-compliance-ledger/internal/targets"
)

var (
	ErrRouteNotFound     = errors.New("route not found")
	ErrUnknownYearTarget = errors.New("no GHG target defined")
)

// Calculator turns a route's measured intensity and fuel consumption
// into a signed compliance balance and stores it as the latest snapshot
// for the (shipId, year) key.
type Calculator struct {
	routes interfaces.RouteStore
	store  interfaces.ComplianceStore
}

func NewCalculator(routes interfaces.RouteStore, store interfaces.ComplianceStore) *Calculator {
	return &Calculator{
		routes: routes,
		store:  store,
	}
}

// Compute calculates the compliance balance for a ship and year and
// upserts the snapshot, replacing any prior snapshot for the same key.
// Positive = surplus (actual intensity below target), negative = deficit.
func (c *Calculator) Compute(ctx context.Context, shipID string, year int) (*models.ComplianceBalance, error) {
	target, ok := targets.ForYear(year)
	if !ok {
		return nil, fmt.Errorf("%w for year %d", ErrUnknownYearTarget, year)
	}

	route, err := c.routes.FindByShipAndYear(shipID, year)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, fmt.Errorf("%w for shipId %s and year %d", ErrRouteNotFound, shipID, year)
	}

	energyInScope := route.FuelConsumption * targets.EnergyPerTonneFuel
	cb := models.ComplianceBalance{
		ShipID:   shipID,
		Year:     year,
		CBGco2eq: round2((target - route.GHGIntensity) * energyInScope),
	}

	if err := c.store.UpsertCB(ctx, cb); err != nil {
		return nil, err
	}
	return &cb, nil
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
