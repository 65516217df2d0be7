package repositories

import (
	"context"

	"harir-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RejectRepository struct {
	DB *pgxpool.Pool
}

func NewRejectRepository(db *pgxpool.Pool) *RejectRepository {
	return &RejectRepository{DB: db}
}

// Create inserts a reject record
func (r *RejectRepository) Create(ctx context.Context, rec *models.RejectRecord) error {
	query := `
		INSERT INTO reject_records (supplier_id, gate_entry_id, variety, quantity, weight, reason, created_by_user_id)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	return r.DB.QueryRow(ctx, query,
		rec.SupplierID,
		rec.GateEntryID,
		rec.Variety,
		rec.Quantity,
		rec.Weight,
		rec.Reason,
		rec.CreatedByUserID,
	).Scan(&rec.ID, &rec.CreatedAt)
}

// List returns the most recent reject records with supplier names
func (r *RejectRepository) List(ctx context.Context, limit int) ([]*models.RejectRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT rr.id, rr.supplier_id, COALESCE(s.name, '') as supplier_name,
		       COALESCE(rr.gate_entry_id, '') as gate_entry_id,
		       rr.variety, rr.quantity, rr.weight, COALESCE(rr.reason, '') as reason,
		       rr.created_by_user_id, rr.created_at
		FROM reject_records rr
		LEFT JOIN suppliers s ON s.id = rr.supplier_id
		ORDER BY rr.created_at DESC
		LIMIT $1
	`
	rows, err := r.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.RejectRecord
	for rows.Next() {
		var rec models.RejectRecord
		err := rows.Scan(
			&rec.ID, &rec.SupplierID, &rec.SupplierName, &rec.GateEntryID,
			&rec.Variety, &rec.Quantity, &rec.Weight, &rec.Reason,
			&rec.CreatedByUserID, &rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
