package interfaces

import (
	"context"

	"github.com/fueleu/ghg-compliance-ledger/internal/models"
)

// RouteStore provides read access to voyage route records, plus the
// baseline flag swap and seed ingestion. Find methods return (nil, nil)
// when no record exists.
type RouteStore interface {
	FindByShipAndYear(shipID string, year int) (*models.Route, error)
	GetAll() ([]models.Route, error)
	FindBaseline() (*models.Route, error)
	SetAsBaseline(ctx context.Context, routeID string) error
	SaveRoute(ctx context.Context, route models.Route) error
}

// ComplianceStore holds compliance snapshots (mutable latest state,
// keyed by shipId+year) and the bank ledger (append-only entries).
// The two consistency models are deliberately separate methods: UpsertCB
// replaces, AppendBankEntry only ever adds.
type ComplianceStore interface {
	UpsertCB(ctx context.Context, cb models.ComplianceBalance) error
	FindCB(shipID string, year int) (*models.ComplianceBalance, error)

	AppendBankEntry(ctx context.Context, entry models.BankEntry) error
	BankEntriesFor(shipID string, year int) ([]models.BankEntry, error)
	TotalBanked(shipID string) (float64, error)
}

// PoolStore persists pools. CreatePool must write the whole member set
// as a single transaction: all members or none.
type PoolStore interface {
	CreatePool(ctx context.Context, year int, members []models.PoolMemberResult) (*models.PoolResult, error)
}
