package models

import "time"

// RejectRecord is one QC rejection logged against a supplier delivery.
// It carries the gate entry id of the originating visit so rejections can be
// correlated with the intake they belong to.
type RejectRecord struct {
	ID              int       `json:"id"`
	SupplierID      int       `json:"supplier_id"`
	SupplierName    string    `json:"supplier_name,omitempty"`
	GateEntryID     string    `json:"gate_entry_id,omitempty"`
	Variety         string    `json:"variety"` // 'fuerte' or 'hass'
	Quantity        int       `json:"quantity"`
	Weight          float64   `json:"weight"`
	Reason          string    `json:"reason"`
	CreatedByUserID int       `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateRejectRequest is the request body for POST /api/rejects
type CreateRejectRequest struct {
	VisitID    int     `json:"visit_id,omitempty"`
	SupplierID int     `json:"supplier_id"`
	Variety    string  `json:"variety"`
	Quantity   int     `json:"quantity"`
	Weight     float64 `json:"weight"`
	Reason     string  `json:"reason"`
}
