package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/fueleu/ghg-compliance-ledger/internal/interfaces"
	"github.com/fueleu/ghg-compliance-ledger/internal/models"
)

type cbKey struct {
	shipID string
	year   int
}

// Store is an in-memory implementation of the route, compliance and
// pool stores. It backs local development and the unit tests. All
// methods are safe for concurrent use; reads return copies so callers
// can never mutate internal state.
type Store struct {
	mu          sync.Mutex
	routes      []models.Route
	nextRouteID int64
	snapshots   map[cbKey]models.ComplianceBalance
	entries     []models.BankEntry
	pools       []models.PoolResult
	nextPoolID  int64
}

func NewStore() *Store {
	return &Store{
		nextRouteID: 1,
		snapshots:   make(map[cbKey]models.ComplianceBalance),
		nextPoolID:  1,
	}
}

func (s *Store) SaveRoute(ctx context.Context, route models.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if route.ID == 0 {
		route.ID = s.nextRouteID
		s.nextRouteID++
	}
	s.routes = append(s.routes, route)
	return nil
}

func (s *Store) FindByShipAndYear(shipID string, year int) (*models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.routes {
		if r.RouteID == shipID && r.Year == year {
			route := r
			return &route, nil
		}
	}
	return nil, nil
}

func (s *Store) GetAll() ([]models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]models.Route, len(s.routes))
	copy(copied, s.routes)
	return copied, nil
}

func (s *Store) FindBaseline() (*models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.routes {
		if r.IsBaseline {
			route := r
			return &route, nil
		}
	}
	return nil, nil
}

func (s *Store) SetAsBaseline(ctx context.Context, routeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.routes {
		if s.routes[i].RouteID == routeID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("route %s not found", routeID)
	}

	for i := range s.routes {
		s.routes[i].IsBaseline = s.routes[i].RouteID == routeID
	}
	return nil
}

// UpsertCB replaces the snapshot for the (shipId, year) key. Snapshots
// are latest-state, never a history.
func (s *Store) UpsertCB(ctx context.Context, cb models.ComplianceBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[cbKey{cb.ShipID, cb.Year}] = cb
	return nil
}

func (s *Store) FindCB(shipID string, year int) (*models.ComplianceBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cb, ok := s.snapshots[cbKey{shipID, year}]
	if !ok {
		return nil, nil
	}
	return &cb, nil
}

// AppendBankEntry adds a ledger entry. Entries are append-only; nothing
// here can overwrite or remove one.
func (s *Store) AppendBankEntry(ctx context.Context, entry models.BankEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	return nil
}

func (s *Store) BankEntriesFor(shipID string, year int) ([]models.BankEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.BankEntry
	for _, e := range s.entries {
		if e.ShipID == shipID && e.Year == year {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *Store) TotalBanked(shipID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, e := range s.entries {
		if e.ShipID == shipID {
			total += e.AmountGco2eq
		}
	}
	return total, nil
}

// CreatePool stores the member set as one unit and returns the pool
// with its totals.
func (s *Store) CreatePool(ctx context.Context, year int, members []models.PoolMemberResult) (*models.PoolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]models.PoolMemberResult, len(members))
	copy(copied, members)

	var totalBefore, totalAfter float64
	for _, m := range copied {
		totalBefore += m.CBBefore
		totalAfter += m.CBAfter
	}

	pool := models.PoolResult{
		ID:            s.nextPoolID,
		Year:          year,
		Members:       copied,
		TotalCBBefore: totalBefore,
		TotalCBAfter:  totalAfter,
	}
	s.nextPoolID++
	s.pools = append(s.pools, pool)

	result := pool
	result.Members = make([]models.PoolMemberResult, len(copied))
	copy(result.Members, copied)
	return &result, nil
}

// Compile-time checks: Store implements all three store interfaces.
var (
	_ interfaces.RouteStore      = (*Store)(nil)
	_ interfaces.ComplianceStore = (*Store)(nil)
	_ interfaces.PoolStore       = (*Store)(nil)
)
