package routes

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/fueleu/ghg-compliance-ledger/internal/interfaces"
	"github.com/fueleu/ghg-compliance-ledger/internal/models"
	"github.com/fueleu/ghg-compliance-ledger/internal/targets"
)

var ErrNoBaseline = errors.New("no baseline route set")

// comparisonYear selects the target used for the compliant flag in the
// comparison view.
const comparisonYear = 2025

// Service exposes the route views: listing, baseline selection and the
// comparison against the current baseline.
type Service struct {
	store interfaces.RouteStore
}

func NewService(store interfaces.RouteStore) *Service {
	return &Service{store: store}
}

func (s *Service) GetAll() ([]models.Route, error) {
	return s.store.GetAll()
}

// SetBaseline marks routeID as the baseline and clears the flag on all
// other routes, as one transaction.
func (s *Service) SetBaseline(ctx context.Context, routeID string) error {
	return s.store.SetAsBaseline(ctx, routeID)
}

// Comparison annotates every non-baseline route with its intensity
// difference against the baseline and a compliance flag against the
// current target.
func (s *Service) Comparison() (*models.ComparisonData, error) {
	baseline, err := s.store.FindBaseline()
	if err != nil {
		return nil, err
	}
	if baseline == nil {
		return nil, ErrNoBaseline
	}

	all, err := s.store.GetAll()
	if err != nil {
		return nil, err
	}

	target, _ := targets.ForYear(comparisonYear)

	comparisons := make([]models.ComparisonRoute, 0, len(all))
	for _, route := range all {
		if route.IsBaseline {
			continue
		}
		percentDiff := (route.GHGIntensity/baseline.GHGIntensity - 1) * 100
		comparisons = append(comparisons, models.ComparisonRoute{
			Route:       route,
			PercentDiff: round2(percentDiff),
			Compliant:   route.GHGIntensity <= target,
		})
	}

	return &models.ComparisonData{
		Baseline:         *baseline,
		ComparisonRoutes: comparisons,
	}, nil
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
