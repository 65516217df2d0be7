package repositories

import (
	"context"
	"errors"
	"time"

	"harir-backend/internal/models"
	"harir-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VisitRepository struct {
	DB *pgxpool.Pool
}

func NewVisitRepository(db *pgxpool.Pool) *VisitRepository {
	return &VisitRepository{DB: db}
}

const visitColumns = `
	v.id, v.supplier_id, COALESCE(v.driver_name, '') as driver_name,
	COALESCE(v.driver_phone, '') as driver_phone, COALESCE(v.vehicle_reg, '') as vehicle_reg,
	v.visit_number, v.status, v.check_in_time, v.check_out_time,
	COALESCE(v.gate_entry_id, '') as gate_entry_id, COALESCE(v.gate_entry_number, 0) as gate_entry_number,
	COALESCE(v.gate_entry_date, '') as gate_entry_date,
	v.is_recheck_in, COALESCE(v.previous_gate_entry_id, '') as previous_gate_entry_id,
	v.created_at, v.updated_at`

func scanVisit(row pgx.Row) (*models.VehicleVisit, error) {
	var v models.VehicleVisit
	err := row.Scan(
		&v.ID, &v.SupplierID, &v.DriverName, &v.DriverPhone, &v.VehicleReg,
		&v.VisitNumber, &v.Status, &v.CheckInTime, &v.CheckOutTime,
		&v.GateEntryID, &v.GateEntryNumber, &v.GateEntryDate,
		&v.IsRecheckIn, &v.PreviousGateEntryID,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a visit as Pre-registered. The visit number is computed
// atomically from the supplier's prior visits.
func (r *VisitRepository) Create(ctx context.Context, v *models.VehicleVisit) error {
	query := `
		INSERT INTO vehicle_visits (supplier_id, driver_name, driver_phone, vehicle_reg, visit_number, status)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(visit_number), 0) + 1 FROM vehicle_visits WHERE supplier_id = $1),
			$5)
		RETURNING id, visit_number, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		v.SupplierID,
		v.DriverName,
		v.DriverPhone,
		v.VehicleReg,
		models.StatusPreRegistered,
	).Scan(&v.ID, &v.VisitNumber, &v.CreatedAt, &v.UpdatedAt)
}

// Get retrieves a visit by ID
func (r *VisitRepository) Get(ctx context.Context, id int) (*models.VehicleVisit, error) {
	query := `SELECT ` + visitColumns + ` FROM vehicle_visits v WHERE v.id = $1`
	return scanVisit(r.DB.QueryRow(ctx, query, id))
}

// List returns the most recent visits, optionally joined with supplier details
func (r *VisitRepository) List(ctx context.Context, limit int, includeSupplier bool) ([]*models.VehicleVisit, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + visitColumns
	if includeSupplier {
		query += `,
			s.id, s.name, s.phone, COALESCE(s.vehicle_reg, '') as s_vehicle_reg,
			COALESCE(s.region, '') as s_region, s.created_at, s.updated_at`
	}
	query += ` FROM vehicle_visits v`
	if includeSupplier {
		query += ` JOIN suppliers s ON s.id = v.supplier_id`
	}
	query += ` ORDER BY v.created_at DESC LIMIT $1`

	rows, err := r.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []*models.VehicleVisit
	for rows.Next() {
		var v models.VehicleVisit
		dest := []interface{}{
			&v.ID, &v.SupplierID, &v.DriverName, &v.DriverPhone, &v.VehicleReg,
			&v.VisitNumber, &v.Status, &v.CheckInTime, &v.CheckOutTime,
			&v.GateEntryID, &v.GateEntryNumber, &v.GateEntryDate,
			&v.IsRecheckIn, &v.PreviousGateEntryID,
			&v.CreatedAt, &v.UpdatedAt,
		}
		var s models.Supplier
		if includeSupplier {
			dest = append(dest,
				&s.ID, &s.Name, &s.Phone, &s.VehicleReg, &s.Region,
				&s.CreatedAt, &s.UpdatedAt,
			)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if includeSupplier {
			v.Supplier = &s
		}
		visits = append(visits, &v)
	}
	return visits, rows.Err()
}

// UpdateTransition persists a status transition with its timestamps and gate
// entry fields.
func (r *VisitRepository) UpdateTransition(ctx context.Context, v *models.VehicleVisit) error {
	query := `
		UPDATE vehicle_visits
		SET status = $2,
		    check_in_time = $3,
		    check_out_time = $4,
		    gate_entry_id = NULLIF($5, ''),
		    gate_entry_number = NULLIF($6, 0),
		    gate_entry_date = NULLIF($7, ''),
		    is_recheck_in = $8,
		    previous_gate_entry_id = NULLIF($9, ''),
		    updated_at = $10
		WHERE id = $1
		RETURNING updated_at
	`
	return r.DB.QueryRow(ctx, query,
		v.ID,
		v.Status,
		v.CheckInTime,
		v.CheckOutTime,
		v.GateEntryID,
		v.GateEntryNumber,
		v.GateEntryDate,
		v.IsRecheckIn,
		v.PreviousGateEntryID,
		timeutil.Now(),
	).Scan(&v.UpdatedAt)
}

// NextGateEntryNumber mints the next gate entry sequence number for the
// given EAT calendar day. The counter row is updated atomically so two
// concurrent check-ins cannot receive the same number.
func (r *VisitRepository) NextGateEntryNumber(ctx context.Context, day time.Time) (int, error) {
	query := `
		INSERT INTO gate_entry_counters (day, last_number)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET last_number = gate_entry_counters.last_number + 1
		RETURNING last_number
	`
	var n int
	err := r.DB.QueryRow(ctx, query, timeutil.DateOnly(day)).Scan(&n)
	return n, err
}
