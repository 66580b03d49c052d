package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"

	"github.com/fueleu/ghg-compliance-ledger/internal/interfaces"
	"github.com/fueleu/ghg-compliance-ledger/internal/models"
)

// Store is the embedded SQLite implementation of the route, compliance
// and pool stores, for single-node deployments that don't want to run
// Postgres. The schema is created on open.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better read concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS routes (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			route_id         TEXT NOT NULL,
			vessel_type      TEXT NOT NULL DEFAULT '',
			fuel_type        TEXT NOT NULL DEFAULT '',
			year             INTEGER NOT NULL,
			ghg_intensity    REAL NOT NULL,
			fuel_consumption REAL NOT NULL,
			distance         REAL NOT NULL DEFAULT 0,
			total_emissions  REAL NOT NULL DEFAULT 0,
			is_baseline      INTEGER NOT NULL DEFAULT 0,
			UNIQUE (route_id, year)
		)`,

		`CREATE TABLE IF NOT EXISTS ship_compliance (
			ship_id   TEXT NOT NULL,
			year      INTEGER NOT NULL,
			cb_gco2eq REAL NOT NULL,
			PRIMARY KEY (ship_id, year)
		)`,

		`CREATE TABLE IF NOT EXISTS bank_entries (
			id            TEXT PRIMARY KEY,
			ship_id       TEXT NOT NULL,
			year          INTEGER NOT NULL,
			amount_gco2eq REAL NOT NULL,
			created_at    TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bank_ship ON bank_entries(ship_id)`,

		`CREATE TABLE IF NOT EXISTS pools (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			year INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS pool_members (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			pool_id   INTEGER NOT NULL REFERENCES pools(id),
			ship_id   TEXT NOT NULL,
			cb_before REAL NOT NULL,
			cb_after  REAL NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveRoute(ctx context.Context, route models.Route) error {
	const query = `INSERT INTO routes
		(route_id, vessel_type, fuel_type, year, ghg_intensity, fuel_consumption, distance, total_emissions, is_baseline)
		VALUES (?,?,?,?,?,?,?,?,?)
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
	const query = `SELECT ` + routeColumns + ` FROM routes WHERE route_id = ? AND year = ? LIMIT 1`
	return scanRoute(s.db.QueryRow(query, shipID, year))
}

func (s *Store) FindBaseline() (*models.Route, error) {
	const query = `SELECT ` + routeColumns + ` FROM routes WHERE is_baseline = 1 LIMIT 1`
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

	if _, err = tx.ExecContext(ctx, `UPDATE routes SET is_baseline = 0 WHERE is_baseline = 1`); err != nil {
		return err
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx, `UPDATE routes SET is_baseline = 1 WHERE route_id = ?`, routeID)
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
		VALUES (?,?,?)
		ON CONFLICT (ship_id, year) DO UPDATE SET cb_gco2eq = excluded.cb_gco2eq`

	_, err := s.db.ExecContext(ctx, query, cb.ShipID, cb.Year, cb.CBGco2eq)
	return err
}

func (s *Store) FindCB(shipID string, year int) (*models.ComplianceBalance, error) {
	const query = `SELECT ship_id, year, cb_gco2eq FROM ship_compliance
		WHERE ship_id = ? AND year = ?`

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
		VALUES (?,?,?,?,?)`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.ShipID, entry.Year, entry.AmountGco2eq, entry.CreatedAt)
	return err
}

func (s *Store) BankEntriesFor(shipID string, year int) ([]models.BankEntry, error) {
	const query = `SELECT id, ship_id, year, amount_gco2eq, created_at FROM bank_entries
		WHERE ship_id = ? AND year = ? ORDER BY created_at`

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
	const query = `SELECT COALESCE(SUM(amount_gco2eq), 0) FROM bank_entries WHERE ship_id = ?`

	var total float64
	if err := s.db.QueryRow(query, shipID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

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

	var res sql.Result
	res, err = tx.ExecContext(ctx, `INSERT INTO pools (year) VALUES (?)`, year)
	if err != nil {
		return nil, err
	}
	poolID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	const memberQuery = `INSERT INTO pool_members (pool_id, ship_id, cb_before, cb_after)
		VALUES (?,?,?,?)`
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
