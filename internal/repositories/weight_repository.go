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

type WeightRepository struct {
	DB *pgxpool.Pool
}

func NewWeightRepository(db *pgxpool.Pool) *WeightRepository {
	return &WeightRepository{DB: db}
}

const weightColumns = `
	w.id, w.pallet_id, w.supplier_id, COALESCE(s.name, '') as supplier_name,
	COALESCE(w.gate_entry_id, '') as gate_entry_id, COALESCE(w.check_in_session, '') as check_in_session,
	w.fuerte_weight, w.fuerte_crates, w.hass_weight, w.hass_crates,
	COALESCE(w.notes, '') as notes, w.created_at, w.updated_at`

func scanWeight(row pgx.Row) (*models.WeightRecord, error) {
	var w models.WeightRecord
	err := row.Scan(
		&w.ID, &w.PalletID, &w.SupplierID, &w.SupplierName,
		&w.GateEntryID, &w.CheckInSession,
		&w.FuerteWeight, &w.FuerteCrates, &w.HassWeight, &w.HassCrates,
		&w.Notes, &w.CreatedAt, &w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Create inserts a weight record
func (r *WeightRepository) Create(ctx context.Context, w *models.WeightRecord) error {
	query := `
		INSERT INTO weight_records (pallet_id, supplier_id, gate_entry_id, check_in_session,
			fuerte_weight, fuerte_crates, hass_weight, hass_crates, notes)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		w.PalletID,
		w.SupplierID,
		w.GateEntryID,
		w.CheckInSession,
		w.FuerteWeight,
		w.FuerteCrates,
		w.HassWeight,
		w.HassCrates,
		w.Notes,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
}

// CreateImported inserts a historical weight record preserving its original
// capture timestamp (legacy export ingestion).
func (r *WeightRepository) CreateImported(ctx context.Context, w *models.WeightRecord) error {
	query := `
		INSERT INTO weight_records (pallet_id, supplier_id, gate_entry_id, check_in_session,
			fuerte_weight, fuerte_crates, hass_weight, hass_crates, notes, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10)
		RETURNING id, updated_at
	`
	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = timeutil.Now()
	}
	return r.DB.QueryRow(ctx, query,
		w.PalletID,
		w.SupplierID,
		w.GateEntryID,
		w.CheckInSession,
		w.FuerteWeight,
		w.FuerteCrates,
		w.HassWeight,
		w.HassCrates,
		w.Notes,
		createdAt,
	).Scan(&w.ID, &w.UpdatedAt)
}

// Get retrieves a weight record by ID
func (r *WeightRepository) Get(ctx context.Context, id int) (*models.WeightRecord, error) {
	query := `SELECT ` + weightColumns + `
		FROM weight_records w
		LEFT JOIN suppliers s ON s.id = w.supplier_id
		WHERE w.id = $1`
	return scanWeight(r.DB.QueryRow(ctx, query, id))
}

// List returns weight records, newest first when desc is true
func (r *WeightRepository) List(ctx context.Context, limit int, desc bool) ([]*models.WeightRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	order := "ASC"
	if desc {
		order = "DESC"
	}
	query := `SELECT ` + weightColumns + `
		FROM weight_records w
		LEFT JOIN suppliers s ON s.id = w.supplier_id
		ORDER BY w.created_at ` + order + `
		LIMIT $1`

	rows, err := r.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.WeightRecord
	for rows.Next() {
		var w models.WeightRecord
		err := rows.Scan(
			&w.ID, &w.PalletID, &w.SupplierID, &w.SupplierName,
			&w.GateEntryID, &w.CheckInSession,
			&w.FuerteWeight, &w.FuerteCrates, &w.HassWeight, &w.HassCrates,
			&w.Notes, &w.CreatedAt, &w.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &w)
	}
	return records, rows.Err()
}

// Update applies a partial update. Nil fields in the request are left as-is.
func (r *WeightRepository) Update(ctx context.Context, id int, req *models.UpdateWeightRequest) (*models.WeightRecord, error) {
	query := `
		UPDATE weight_records
		SET gate_entry_id = COALESCE(NULLIF($2, ''), gate_entry_id),
		    fuerte_weight = COALESCE($3, fuerte_weight),
		    fuerte_crates = COALESCE($4, fuerte_crates),
		    hass_weight = COALESCE($5, hass_weight),
		    hass_crates = COALESCE($6, hass_crates),
		    notes = COALESCE($7, notes),
		    updated_at = $8
		WHERE id = $1
	`
	gateEntryID := ""
	if req.GateEntryID != nil {
		gateEntryID = *req.GateEntryID
	}
	tag, err := r.DB.Exec(ctx, query, id,
		gateEntryID,
		req.FuerteWeight,
		req.FuerteCrates,
		req.HassWeight,
		req.HassCrates,
		req.Notes,
		timeutil.Now(),
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a weight record
func (r *WeightRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM weight_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// NextPalletNumber mints the next pallet sequence number for the given EAT
// calendar day, same counter scheme as gate entry numbers.
func (r *WeightRepository) NextPalletNumber(ctx context.Context, day time.Time) (int, error) {
	query := `
		INSERT INTO pallet_counters (day, last_number)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET last_number = pallet_counters.last_number + 1
		RETURNING last_number
	`
	var n int
	err := r.DB.QueryRow(ctx, query, timeutil.DateOnly(day)).Scan(&n)
	return n, err
}
