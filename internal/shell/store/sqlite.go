package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tidewater/ferryd/internal/core/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Row Types
// =============================================================================

type vesselRow struct {
	ID             int64   `db:"id"`
	Name           string  `db:"name"`
	LowLaneLength  float64 `db:"low_lane_length"`
	HighLaneLength float64 `db:"high_lane_length"`
}

func (r vesselRow) toDomain() domain.Vessel {
	return domain.Vessel{
		ID:             r.ID,
		Name:           r.Name,
		LowLaneLength:  r.LowLaneLength,
		HighLaneLength: r.HighLaneLength,
	}
}

type sailingRow struct {
	ID            int64   `db:"id"`
	VesselID      int64   `db:"vessel_id"`
	Terminal      string  `db:"terminal"`
	Day           int     `db:"day"`
	Hour          int     `db:"hour"`
	LowRemaining  float64 `db:"low_remaining"`
	HighRemaining float64 `db:"high_remaining"`
}

func (r sailingRow) toDomain() domain.Sailing {
	return domain.Sailing{
		ID:            r.ID,
		VesselID:      r.VesselID,
		Terminal:      r.Terminal,
		Day:           r.Day,
		Hour:          r.Hour,
		LowRemaining:  r.LowRemaining,
		HighRemaining: r.HighRemaining,
	}
}

type vehicleRow struct {
	ID           int64   `db:"id"`
	LicensePlate string  `db:"license_plate"`
	PhoneNumber  string  `db:"phone_number"`
	Length       float64 `db:"length"`
	Height       float64 `db:"height"`
}

func (r vehicleRow) toDomain() domain.Vehicle {
	return domain.Vehicle{
		ID:           r.ID,
		LicensePlate: r.LicensePlate,
		PhoneNumber:  r.PhoneNumber,
		Length:       r.Length,
		Height:       r.Height,
	}
}

type reservationRow struct {
	SailingID       int64  `db:"sailing_id"`
	VehicleID       int64  `db:"vehicle_id"`
	Reference       string `db:"reference"`
	AmountPaidCents int64  `db:"amount_paid_cents"`
	LowLane         bool   `db:"low_lane"`
	CreatedAt       string `db:"created_at"`
}

func (r reservationRow) toDomain() (domain.Reservation, error) {
	createdAt, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("malformed created_at %q: %w", r.CreatedAt, err)
	}
	return domain.Reservation{
		SailingID:       r.SailingID,
		VehicleID:       r.VehicleID,
		Reference:       r.Reference,
		AmountPaidCents: r.AmountPaidCents,
		LowLane:         r.LowLane,
		CreatedAt:       createdAt,
	}, nil
}

type sailingJoinRow struct {
	sailingRow
	VesselName       string  `db:"vessel_name"`
	LowLaneLength    float64 `db:"low_lane_length"`
	HighLaneLength   float64 `db:"high_lane_length"`
	ReservationCount int     `db:"reservation_count"`
}

func (r sailingJoinRow) toJoin() SailingJoin {
	return SailingJoin{
		Sailing: r.sailingRow.toDomain(),
		Vessel: domain.Vessel{
			ID:             r.VesselID,
			Name:           r.VesselName,
			LowLaneLength:  r.LowLaneLength,
			HighLaneLength: r.HighLaneLength,
		},
		ReservationCount: r.ReservationCount,
	}
}

// =============================================================================
// Store Interface - DB Methods
// =============================================================================

func (s *SQLiteStore) CreateVessel(ctx context.Context, vessel *domain.Vessel) error {
	return createVessel(ctx, s.db, vessel)
}

func (s *SQLiteStore) GetVessel(ctx context.Context, id int64) (*domain.Vessel, error) {
	return getVessel(ctx, s.db, id)
}

func (s *SQLiteStore) GetVesselByName(ctx context.Context, name string) (*domain.Vessel, error) {
	return getVesselByName(ctx, s.db, name)
}

func (s *SQLiteStore) ListVessels(ctx context.Context, opts ListOptions) ([]domain.Vessel, error) {
	return listVessels(ctx, s.db, opts)
}

func (s *SQLiteStore) CreateSailing(ctx context.Context, sailing *domain.Sailing) error {
	return createSailing(ctx, s.db, sailing)
}

func (s *SQLiteStore) GetSailing(ctx context.Context, id int64) (*domain.Sailing, error) {
	return getSailing(ctx, s.db, id)
}

func (s *SQLiteStore) GetSailingByKey(ctx context.Context, key domain.DepartureKey) (*domain.Sailing, error) {
	return getSailingByKey(ctx, s.db, key)
}

func (s *SQLiteStore) UpdateSailingRemaining(ctx context.Context, sailing *domain.Sailing) error {
	return updateSailingRemaining(ctx, s.db, sailing)
}

func (s *SQLiteStore) DeleteSailing(ctx context.Context, id int64) error {
	return deleteSailing(ctx, s.db, id)
}

func (s *SQLiteStore) CountSailings(ctx context.Context) (int, error) {
	return countSailings(ctx, s.db)
}

func (s *SQLiteStore) CreateVehicle(ctx context.Context, vehicle *domain.Vehicle) error {
	return createVehicle(ctx, s.db, vehicle)
}

func (s *SQLiteStore) GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error) {
	return getVehicle(ctx, s.db, id)
}

func (s *SQLiteStore) GetVehicleByPlate(ctx context.Context, licensePlate string) (*domain.Vehicle, error) {
	return getVehicleByPlate(ctx, s.db, licensePlate)
}

func (s *SQLiteStore) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	return createReservation(ctx, s.db, reservation)
}

func (s *SQLiteStore) GetReservation(ctx context.Context, sailingID, vehicleID int64) (*domain.Reservation, error) {
	return getReservation(ctx, s.db, sailingID, vehicleID)
}

func (s *SQLiteStore) DeleteReservation(ctx context.Context, sailingID, vehicleID int64) error {
	return deleteReservation(ctx, s.db, sailingID, vehicleID)
}

func (s *SQLiteStore) UpdateReservationAmount(ctx context.Context, sailingID, vehicleID, amountCents int64) error {
	return updateReservationAmount(ctx, s.db, sailingID, vehicleID, amountCents)
}

func (s *SQLiteStore) CountReservations(ctx context.Context, sailingID int64) (int, error) {
	return countReservations(ctx, s.db, sailingID)
}

func (s *SQLiteStore) ListSailingJoins(ctx context.Context, opts ListOptions) ([]SailingJoin, error) {
	return listSailingJoins(ctx, s.db, opts)
}

func (s *SQLiteStore) GetSailingJoin(ctx context.Context, key domain.DepartureKey) (*SailingJoin, error) {
	return getSailingJoin(ctx, s.db, key)
}

// =============================================================================
// Transaction Support
// =============================================================================

func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txSQLiteStore{tx: tx}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}

	return nil
}

// =============================================================================
// Transaction Store
// =============================================================================

// txSQLiteStore implements Store within a transaction.
type txSQLiteStore struct {
	tx *sqlx.Tx
}

func (s *txSQLiteStore) CreateVessel(ctx context.Context, vessel *domain.Vessel) error {
	return createVessel(ctx, s.tx, vessel)
}

func (s *txSQLiteStore) GetVessel(ctx context.Context, id int64) (*domain.Vessel, error) {
	return getVessel(ctx, s.tx, id)
}

func (s *txSQLiteStore) GetVesselByName(ctx context.Context, name string) (*domain.Vessel, error) {
	return getVesselByName(ctx, s.tx, name)
}

func (s *txSQLiteStore) ListVessels(ctx context.Context, opts ListOptions) ([]domain.Vessel, error) {
	return listVessels(ctx, s.tx, opts)
}

func (s *txSQLiteStore) CreateSailing(ctx context.Context, sailing *domain.Sailing) error {
	return createSailing(ctx, s.tx, sailing)
}

func (s *txSQLiteStore) GetSailing(ctx context.Context, id int64) (*domain.Sailing, error) {
	return getSailing(ctx, s.tx, id)
}

func (s *txSQLiteStore) GetSailingByKey(ctx context.Context, key domain.DepartureKey) (*domain.Sailing, error) {
	return getSailingByKey(ctx, s.tx, key)
}

func (s *txSQLiteStore) UpdateSailingRemaining(ctx context.Context, sailing *domain.Sailing) error {
	return updateSailingRemaining(ctx, s.tx, sailing)
}

func (s *txSQLiteStore) DeleteSailing(ctx context.Context, id int64) error {
	return deleteSailing(ctx, s.tx, id)
}

func (s *txSQLiteStore) CountSailings(ctx context.Context) (int, error) {
	return countSailings(ctx, s.tx)
}

func (s *txSQLiteStore) CreateVehicle(ctx context.Context, vehicle *domain.Vehicle) error {
	return createVehicle(ctx, s.tx, vehicle)
}

func (s *txSQLiteStore) GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error) {
	return getVehicle(ctx, s.tx, id)
}

func (s *txSQLiteStore) GetVehicleByPlate(ctx context.Context, licensePlate string) (*domain.Vehicle, error) {
	return getVehicleByPlate(ctx, s.tx, licensePlate)
}

func (s *txSQLiteStore) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	return createReservation(ctx, s.tx, reservation)
}

func (s *txSQLiteStore) GetReservation(ctx context.Context, sailingID, vehicleID int64) (*domain.Reservation, error) {
	return getReservation(ctx, s.tx, sailingID, vehicleID)
}

func (s *txSQLiteStore) DeleteReservation(ctx context.Context, sailingID, vehicleID int64) error {
	return deleteReservation(ctx, s.tx, sailingID, vehicleID)
}

func (s *txSQLiteStore) UpdateReservationAmount(ctx context.Context, sailingID, vehicleID, amountCents int64) error {
	return updateReservationAmount(ctx, s.tx, sailingID, vehicleID, amountCents)
}

func (s *txSQLiteStore) CountReservations(ctx context.Context, sailingID int64) (int, error) {
	return countReservations(ctx, s.tx, sailingID)
}

func (s *txSQLiteStore) ListSailingJoins(ctx context.Context, opts ListOptions) ([]SailingJoin, error) {
	return listSailingJoins(ctx, s.tx, opts)
}

func (s *txSQLiteStore) GetSailingJoin(ctx context.Context, key domain.DepartureKey) (*SailingJoin, error) {
	return getSailingJoin(ctx, s.tx, key)
}

func (s *txSQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	// Already in a transaction, just run the function
	return fn(s)
}

func (s *txSQLiteStore) Close() error {
	// No-op for tx store
	return nil
}

// =============================================================================
// Shared Implementation Functions
// =============================================================================

func createVessel(ctx context.Context, e executor, vessel *domain.Vessel) error {
	const query = `
		INSERT INTO vessels (name, low_lane_length, high_lane_length)
		VALUES (:name, :low_lane_length, :high_lane_length)`

	res, err := e.NamedExecContext(ctx, query, vesselRow{
		Name:           vessel.Name,
		LowLaneLength:  vessel.LowLaneLength,
		HighLaneLength: vessel.HighLaneLength,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return NewStoreError("CreateVessel", "vessel", vessel.Name, "duplicate name", ErrDuplicateVessel)
		}
		return NewStoreError("CreateVessel", "vessel", vessel.Name, err.Error(), err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return NewStoreError("CreateVessel", "vessel", vessel.Name, "failed to read generated id", err)
	}
	vessel.ID = id
	return nil
}

func getVessel(ctx context.Context, e executor, id int64) (*domain.Vessel, error) {
	const query = `
		SELECT id, name, low_lane_length, high_lane_length
		FROM vessels WHERE id = ?`

	var row vesselRow
	if err := e.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetVessel", "vessel", formatID(id), "not found", ErrNotFound)
		}
		return nil, NewStoreError("GetVessel", "vessel", formatID(id), err.Error(), err)
	}

	vessel := row.toDomain()
	return &vessel, nil
}

func getVesselByName(ctx context.Context, e executor, name string) (*domain.Vessel, error) {
	const query = `
		SELECT id, name, low_lane_length, high_lane_length
		FROM vessels WHERE name = ?`

	var row vesselRow
	if err := e.GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetVesselByName", "vessel", name, "not found", ErrNotFound)
		}
		return nil, NewStoreError("GetVesselByName", "vessel", name, err.Error(), err)
	}

	vessel := row.toDomain()
	return &vessel, nil
}

func listVessels(ctx context.Context, e executor, opts ListOptions) ([]domain.Vessel, error) {
	opts = opts.Normalize()
	const query = `
		SELECT id, name, low_lane_length, high_lane_length
		FROM vessels ORDER BY name LIMIT ? OFFSET ?`

	var rows []vesselRow
	if err := e.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListVessels", "vessel", "", err.Error(), err)
	}

	vessels := make([]domain.Vessel, 0, len(rows))
	for _, row := range rows {
		vessels = append(vessels, row.toDomain())
	}
	return vessels, nil
}

func createSailing(ctx context.Context, e executor, sailing *domain.Sailing) error {
	const query = `
		INSERT INTO sailings (vessel_id, terminal, day, hour, low_remaining, high_remaining)
		VALUES (:vessel_id, :terminal, :day, :hour, :low_remaining, :high_remaining)`

	res, err := e.NamedExecContext(ctx, query, sailingRow{
		VesselID:      sailing.VesselID,
		Terminal:      sailing.Terminal,
		Day:           sailing.Day,
		Hour:          sailing.Hour,
		LowRemaining:  sailing.LowRemaining,
		HighRemaining: sailing.HighRemaining,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return NewStoreError("CreateSailing", "sailing", sailing.Key().String(), "duplicate departure key", ErrDuplicateSailing)
		}
		if isForeignKeyViolation(err) {
			return NewStoreError("CreateSailing", "sailing", sailing.Key().String(), "unknown vessel", ErrForeignKey)
		}
		return NewStoreError("CreateSailing", "sailing", sailing.Key().String(), err.Error(), err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return NewStoreError("CreateSailing", "sailing", sailing.Key().String(), "failed to read generated id", err)
	}
	sailing.ID = id
	return nil
}

func getSailing(ctx context.Context, e executor, id int64) (*domain.Sailing, error) {
	const query = `
		SELECT id, vessel_id, terminal, day, hour, low_remaining, high_remaining
		FROM sailings WHERE id = ?`

	var row sailingRow
	if err := e.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetSailing", "sailing", formatID(id), "not found", ErrNotFound)
		}
		return nil, NewStoreError("GetSailing", "sailing", formatID(id), err.Error(), err)
	}

	sailing := row.toDomain()
	return &sailing, nil
}

func getSailingByKey(ctx context.Context, e executor, key domain.DepartureKey) (*domain.Sailing, error) {
	const query = `
		SELECT id, vessel_id, terminal, day, hour, low_remaining, high_remaining
		FROM sailings WHERE terminal = ? AND day = ? AND hour = ?`

	var row sailingRow
	if err := e.GetContext(ctx, &row, query, key.Terminal, key.Day, key.Hour); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetSailingByKey", "sailing", key.String(), "not found", ErrNotFound)
		}
		return nil, NewStoreError("GetSailingByKey", "sailing", key.String(), err.Error(), err)
	}

	sailing := row.toDomain()
	return &sailing, nil
}

func updateSailingRemaining(ctx context.Context, e executor, sailing *domain.Sailing) error {
	const query = `
		UPDATE sailings SET low_remaining = ?, high_remaining = ?
		WHERE id = ?`

	res, err := e.ExecContext(ctx, query, sailing.LowRemaining, sailing.HighRemaining, sailing.ID)
	if err != nil {
		return NewStoreError("UpdateSailingRemaining", "sailing", formatID(sailing.ID), err.Error(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NewStoreError("UpdateSailingRemaining", "sailing", formatID(sailing.ID), "not found", ErrNotFound)
	}
	return nil
}

func deleteSailing(ctx context.Context, e executor, id int64) error {
	// Reservations go first so the sailing row never dangles references.
	if _, err := e.ExecContext(ctx, `DELETE FROM reservations WHERE sailing_id = ?`, id); err != nil {
		return NewStoreError("DeleteSailing", "sailing", formatID(id), err.Error(), err)
	}

	res, err := e.ExecContext(ctx, `DELETE FROM sailings WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteSailing", "sailing", formatID(id), err.Error(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NewStoreError("DeleteSailing", "sailing", formatID(id), "not found", ErrNotFound)
	}
	return nil
}

func countSailings(ctx context.Context, e executor) (int, error) {
	var count int
	if err := e.GetContext(ctx, &count, `SELECT COUNT(*) FROM sailings`); err != nil {
		return 0, NewStoreError("CountSailings", "sailing", "", err.Error(), err)
	}
	return count, nil
}

func createVehicle(ctx context.Context, e executor, vehicle *domain.Vehicle) error {
	const query = `
		INSERT INTO vehicles (license_plate, phone_number, length, height)
		VALUES (:license_plate, :phone_number, :length, :height)`

	res, err := e.NamedExecContext(ctx, query, vehicleRow{
		LicensePlate: vehicle.LicensePlate,
		PhoneNumber:  vehicle.PhoneNumber,
		Length:       vehicle.Length,
		Height:       vehicle.Height,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return NewStoreError("CreateVehicle", "vehicle", vehicle.LicensePlate, "duplicate license plate", ErrDuplicateVehicle)
		}
		return NewStoreError("CreateVehicle", "vehicle", vehicle.LicensePlate, err.Error(), err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return NewStoreError("CreateVehicle", "vehicle", vehicle.LicensePlate, "failed to read generated id", err)
	}
	vehicle.ID = id
	return nil
}

func getVehicle(ctx context.Context, e executor, id int64) (*domain.Vehicle, error) {
	const query = `
		SELECT id, license_plate, phone_number, length, height
		FROM vehicles WHERE id = ?`

	var row vehicleRow
	if err := e.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetVehicle", "vehicle", formatID(id), "not found", ErrNotFound)
		}
		return nil, NewStoreError("GetVehicle", "vehicle", formatID(id), err.Error(), err)
	}

	vehicle := row.toDomain()
	return &vehicle, nil
}

func getVehicleByPlate(ctx context.Context, e executor, licensePlate string) (*domain.Vehicle, error) {
	const query = `
		SELECT id, license_plate, phone_number, length, height
		FROM vehicles WHERE license_plate = ?`

	var row vehicleRow
	if err := e.GetContext(ctx, &row, query, licensePlate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetVehicleByPlate", "vehicle", licensePlate, "not found", ErrNotFound)
		}
		return nil, NewStoreError("GetVehicleByPlate", "vehicle", licensePlate, err.Error(), err)
	}

	vehicle := row.toDomain()
	return &vehicle, nil
}

func createReservation(ctx context.Context, e executor, reservation *domain.Reservation) error {
	const query = `
		INSERT INTO reservations (sailing_id, vehicle_id, reference, amount_paid_cents, low_lane, created_at)
		VALUES (:sailing_id, :vehicle_id, :reference, :amount_paid_cents, :low_lane, :created_at)`

	_, err := e.NamedExecContext(ctx, query, reservationRow{
		SailingID:       reservation.SailingID,
		VehicleID:       reservation.VehicleID,
		Reference:       reservation.Reference,
		AmountPaidCents: reservation.AmountPaidCents,
		LowLane:         reservation.LowLane,
		CreatedAt:       reservation.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return NewStoreError("CreateReservation", "reservation", reservation.Reference, "duplicate pair", ErrDuplicateReservation)
		}
		if isForeignKeyViolation(err) {
			return NewStoreError("CreateReservation", "reservation", reservation.Reference, "unknown sailing or vehicle", ErrForeignKey)
		}
		return NewStoreError("CreateReservation", "reservation", reservation.Reference, err.Error(), err)
	}
	return nil
}

func getReservation(ctx context.Context, e executor, sailingID, vehicleID int64) (*domain.Reservation, error) {
	const query = `
		SELECT sailing_id, vehicle_id, reference, amount_paid_cents, low_lane, created_at
		FROM reservations WHERE sailing_id = ? AND vehicle_id = ?`

	var row reservationRow
	if err := e.GetContext(ctx, &row, query, sailingID, vehicleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetReservation", "reservation", pairID(sailingID, vehicleID), "not found", ErrNotFound)
		}
		return nil, NewStoreError("GetReservation", "reservation", pairID(sailingID, vehicleID), err.Error(), err)
	}

	reservation, err := row.toDomain()
	if err != nil {
		return nil, NewStoreError("GetReservation", "reservation", pairID(sailingID, vehicleID), err.Error(), err)
	}
	return &reservation, nil
}

func deleteReservation(ctx context.Context, e executor, sailingID, vehicleID int64) error {
	res, err := e.ExecContext(ctx, `DELETE FROM reservations WHERE sailing_id = ? AND vehicle_id = ?`, sailingID, vehicleID)
	if err != nil {
		return NewStoreError("DeleteReservation", "reservation", pairID(sailingID, vehicleID), err.Error(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NewStoreError("DeleteReservation", "reservation", pairID(sailingID, vehicleID), "not found", ErrNotFound)
	}
	return nil
}

func updateReservationAmount(ctx context.Context, e executor, sailingID, vehicleID, amountCents int64) error {
	const query = `
		UPDATE reservations SET amount_paid_cents = ?
		WHERE sailing_id = ? AND vehicle_id = ?`

	res, err := e.ExecContext(ctx, query, amountCents, sailingID, vehicleID)
	if err != nil {
		return NewStoreError("UpdateReservationAmount", "reservation", pairID(sailingID, vehicleID), err.Error(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NewStoreError("UpdateReservationAmount", "reservation", pairID(sailingID, vehicleID), "not found", ErrNotFound)
	}
	return nil
}

func countReservations(ctx context.Context, e executor, sailingID int64) (int, error) {
	var count int
	if err := e.GetContext(ctx, &count, `SELECT COUNT(*) FROM reservations WHERE sailing_id = ?`, sailingID); err != nil {
		return 0, NewStoreError("CountReservations", "reservation", formatID(sailingID), err.Error(), err)
	}
	return count, nil
}

const sailingJoinColumns = `
	s.id, s.vessel_id, s.terminal, s.day, s.hour, s.low_remaining, s.high_remaining,
	v.name AS vessel_name, v.low_lane_length, v.high_lane_length,
	(SELECT COUNT(*) FROM reservations r WHERE r.sailing_id = s.id) AS reservation_count`

func listSailingJoins(ctx context.Context, e executor, opts ListOptions) ([]SailingJoin, error) {
	opts = opts.Normalize()
	query := `
		SELECT` + sailingJoinColumns + `
		FROM sailings s
		JOIN vessels v ON v.id = s.vessel_id
		ORDER BY s.day, s.hour, s.terminal
		LIMIT ? OFFSET ?`

	var rows []sailingJoinRow
	if err := e.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListSailingJoins", "sailing", "", err.Error(), err)
	}

	joins := make([]SailingJoin, 0, len(rows))
	for _, row := range rows {
		joins = append(joins, row.toJoin())
	}
	return joins, nil
}

func getSailingJoin(ctx context.Context, e executor, key domain.DepartureKey) (*SailingJoin, error) {
	query := `
		SELECT` + sailingJoinColumns + `
		FROM sailings s
		JOIN vessels v ON v.id = s.vessel_id
		WHERE s.terminal = ? AND s.day = ? AND s.hour = ?`

	var row sailingJoinRow
	if err := e.GetContext(ctx, &row, query, key.Terminal, key.Day, key.Hour); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetSailingJoin", "sailing", key.String(), "not found", ErrNotFound)
		}
		return nil, NewStoreError("GetSailingJoin", "sailing", key.String(), err.Error(), err)
	}

	join := row.toJoin()
	return &join, nil
}

// =============================================================================
// Helpers
// =============================================================================

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func pairID(sailingID, vehicleID int64) string {
	return formatID(sailingID) + "/" + formatID(vehicleID)
}
