package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver

	"github.com/fueleu/ghg-compliance-ledger/internal/interfaces"
	"github.com/fueleu/ghg-compliance-ledger/internal/models"
)

// Store is the Postgres implementation of the route, compliance and
// pool stores. The schema is created by migrations/001_init.sql.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveRoute(ctx context.Context, route models.Route) error {
	const query = `INSERT INTO routes
		(route_id, vessel_type, fuel_type, year, ghg_intensity, fuel_consumption, distance, total_emissions, is_baseline)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (route_id, year) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		route.RouteID, route.VesselType, route.FuelType, route.Year,
		route.GHGIntensity, route.FuelConsumption, route.Distance,
		route.TotalEmissions, route.IsBaseline)
	return err
}

const routeColumns = `id, route_id, vessel_type, fuel_type, year, ghg_intensity, fuel_consumption, distance, total_emissions, is_baseline`

func scanRoute(row *sql.Row) (*models.Route, error) {
	var r models.Route
	err := row.Scan(&r.ID, &r.RouteID, &r.VesselType, &r.FuelType, &r.Year,
		&r.GHGIntensity, &r.FuelConsumption, &r.Distance, &r.TotalEmissions, &r.IsBaseline)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) FindByShipAndYear(shipID string, year int) (*models.Route, error) {
	const query = `SELECT ` + routeColumns + ` FROM routes WHERE route_id = $1 AND year = $2 LIMIT 1`
	return scanRoute(s.db.QueryRow(query, shipID, year))
}

func (s *Store) FindBaseline() (*models.Route, error) {
	const query = `SELECT ` + routeColumns + ` FROM routes WHERE is_baseline LIMIT 1`
	return scanRoute(s.db.QueryRow(query))
}

func (s *Store) GetAll() ([]models.Route, error) {
	const query = `SELECT ` + routeColumns + ` FROM routes ORDER BY id`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		var r models.Route
		if err := rows.Scan(&r.ID, &r.RouteID, &r.VesselType, &r.FuelType, &r.Year,
			&r.GHGIntensity, &r.FuelConsumption, &r.Distance, &r.TotalEmissions, &r.IsBaseline); err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

// SetAsBaseline clears the baseline flag everywhere and sets it on the
// given route, in one transaction so there is never more than one
// baseline visible.
func (s *Store) SetAsBaseline(ctx context.Context, routeID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE routes SET is_baseline = FALSE WHERE is_baseline`); err != nil {
		return err
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx, `UPDATE routes SET is_baseline = TRUE WHERE route_id = $1`, routeID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = fmt.Errorf("route %s not found", routeID)
		return err
	}

	return tx.Commit()
}

func (s *Store) UpsertCB(ctx context.Context, cb models.ComplianceBalance) error {
	const query = `INSERT INTO ship_compliance (ship_id, year, cb_gco2eq)
		VALUES ($1,$2,$3)
		ON CONFLICT (ship_id, year) DO UPDATE SET cb_gco2eq = EXCLUDED.cb_gco2eq`

	_, err := s.db.ExecContext(ctx, query, cb.ShipID, cb.Year, cb.CBGco2eq)
	return err
}

func (s *Store) FindCB(shipID string, year int) (*models.ComplianceBalance, error) {
	const query = `SELECT ship_id, year, cb_gco2eq FROM ship_compliance
		WHERE ship_id = $1 AND year = $2`

	var cb models.ComplianceBalance
	err := s.db.QueryRow(query, shipID, year).Scan(&cb.ShipID, &cb.Year, &cb.CBGco2eq)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cb, nil
}

func (s *Store) AppendBankEntry(ctx context.Context, entry models.BankEntry) error {
	const query = `INSERT INTO bank_entries (id, ship_id, year, amount_gco2eq, created_at)
		VALUES ($1,$2,$3,$4,$5)`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.ShipID, entry.Year, entry.AmountGco2eq, entry.CreatedAt)
	return err
}

func (s *Store) BankEntriesFor(shipID string, year int) ([]models.BankEntry, error) {
	const query = `SELECT id, ship_id, year, amount_gco2eq, created_at FROM bank_entries
		WHERE ship_id = $1 AND year = $2 ORDER BY created_at`

	rows, err := s.db.Query(query, shipID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.BankEntry
	for rows.Next() {
		var e models.BankEntry
		if err := rows.Scan(&e.ID, &e.ShipID, &e.Year, &e.AmountGco2eq, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) TotalBanked(shipID string) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount_gco2eq), 0) FROM bank_entries WHERE ship_id = $1`

	var total float64
	if err := s.db.QueryRow(query, shipID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// CreatePool writes the pool and all its members in one transaction:
// all members or none.
func (s *Store) CreatePool(ctx context.Context, year int, members []models.PoolMemberResult) (*models.PoolResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var poolID int64
	if err = tx.QueryRowContext(ctx, `INSERT INTO pools (year) VALUES ($1) RETURNING id`, year).Scan(&poolID); err != nil {
		return nil, err
	}

	const memberQuery = `INSERT INTO pool_members (pool_id, ship_id, cb_before, cb_after)
		VALUES ($1,$2,$3,$4)`
	for _, m := range members {
		if _, err = tx.ExecContext(ctx, memberQuery, poolID, m.ShipID, m.CBBefore, m.CBAfter); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	var totalBefore, totalAfter float64
	for _, m := range members {
		totalBefore += m.CBBefore
		totalAfter += m.CBAfter
	}

	return &models.PoolResult{
		ID:            poolID,
		Year:          year,
		Members:       members,
		TotalCBBefore: totalBefore,
		TotalCBAfter:  totalAfter,
	}, nil
}

// Compile-time checks: Store implements all three store interfaces.
var (
	_ interfaces.RouteStore      = (*Store)(nil)
	_ interfaces.ComplianceStore = (*Store)(nil)
	_ interfaces.PoolStore       = (*Store)(nil)
)
