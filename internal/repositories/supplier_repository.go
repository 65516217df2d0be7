package repositories

import (
	"context"
	"errors"

	"harir-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type SupplierRepository struct {
	DB *pgxpool.Pool
}

func NewSupplierRepository(db *pgxpool.Pool) *SupplierRepository {
	return &SupplierRepository{DB: db}
}

// Create inserts a new supplier
func (r *SupplierRepository) Create(ctx context.Context, s *models.Supplier) error {
	query := `
		INSERT INTO suppliers (name, phone, vehicle_reg, region)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		s.Name,
		s.Phone,
		s.VehicleReg,
		s.Region,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Get retrieves a supplier by ID
func (r *SupplierRepository) Get(ctx context.Context, id int) (*models.Supplier, error) {
	query := `
		SELECT id, name, phone, COALESCE(vehicle_reg, '') as vehicle_reg, COALESCE(region, '') as region,
		       created_at, updated_at
		FROM suppliers
		WHERE id = $1
	`
	var s models.Supplier
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Phone, &s.VehicleReg, &s.Region,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByPhone retrieves a supplier by phone number (repeat-visit resolution)
func (r *SupplierRepository) GetByPhone(ctx context.Context, phone string) (*models.Supplier, error) {
	query := `
		SELECT id, name, phone, COALESCE(vehicle_reg, '') as vehicle_reg, COALESCE(region, '') as region,
		       created_at, updated_at
		FROM suppliers
		WHERE phone = $1
	`
	var s models.Supplier
	err := r.DB.QueryRow(ctx, query, phone).Scan(
		&s.ID, &s.Name, &s.Phone, &s.VehicleReg, &s.Region,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListCheckedIn returns suppliers currently on-site, joined with the gate
// entry details of their open visit (status Checked-in or Pending-exit).
func (r *SupplierRepository) ListCheckedIn(ctx context.Context) ([]*models.CheckedInSupplier, error) {
	query := `
		SELECT s.id, s.name, s.phone, COALESCE(s.vehicle_reg, '') as vehicle_reg,
		       COALESCE(s.region, '') as region, s.created_at, s.updated_at,
		       v.id as visit_id, COALESCE(v.gate_entry_id, '') as gate_entry_id,
		       v.check_in_time, v.visit_number
		FROM suppliers s
		JOIN vehicle_visits v ON v.supplier_id = s.id
		WHERE v.status IN ('Checked-in', 'Pending-exit')
		ORDER BY v.check_in_time DESC
	`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []*models.CheckedInSupplier
	for rows.Next() {
		var cs models.CheckedInSupplier
		err := rows.Scan(
			&cs.ID, &cs.Name, &cs.Phone, &cs.VehicleReg, &cs.Region,
			&cs.CreatedAt, &cs.UpdatedAt,
			&cs.VisitID, &cs.GateEntryID, &cs.CheckInTime, &cs.VisitNumber,
		)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, &cs)
	}
	return suppliers, rows.Err()
}
