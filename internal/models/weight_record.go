package models

import "time"

// WeightRecord is one pallet intake captured at the weighbridge.
//
// GateEntryID is copied from the originating visit at capture time when the
// visit carries one; CheckInSession is the fallback correlation key used for
// records captured before gate entry ids existed.
type WeightRecord struct {
	ID             int       `json:"id"`
	PalletID       string    `json:"pallet_id"` // PAL-NNN/MMDD, daily sequence
	SupplierID     int       `json:"supplier_id"`
	SupplierName   string    `json:"supplier_name,omitempty"`
	GateEntryID    string    `json:"gate_entry_id,omitempty"`
	CheckInSession string    `json:"check_in_session,omitempty"`
	FuerteWeight   float64   `json:"fuerte_weight"`
	FuerteCrates   int       `json:"fuerte_crates"`
	HassWeight     float64   `json:"hass_weight"`
	HassCrates     int       `json:"hass_crates"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TotalWeight returns the combined weight across both varieties.
func (w *WeightRecord) TotalWeight() float64 {
	return w.FuerteWeight + w.HassWeight
}

// TotalCrates returns the combined crate count across both varieties.
func (w *WeightRecord) TotalCrates() int {
	return w.FuerteCrates + w.HassCrates
}

// CreateWeightRequest is the request body for POST /api/weights. The weight
// and crate fields arrive as strings from the capture form and are parsed
// server-side before validation.
type CreateWeightRequest struct {
	VisitID        int    `json:"visit_id,omitempty"`
	SupplierID     int    `json:"supplier_id"`
	GateEntryID    string `json:"gate_entry_id"`
	CheckInSession string `json:"check_in_session"`
	FuerteWeight   string `json:"fuerte_weight"`
	FuerteCrates   string `json:"fuerte_crates"`
	HassWeight     string `json:"hass_weight"`
	HassCrates     string `json:"hass_crates"`
	Notes          string `json:"notes"`
}

// UpdateWeightRequest is the request body for PATCH /api/weights?id={id}.
// Nil fields are left unchanged.
type UpdateWeightRequest struct {
	GateEntryID  *string  `json:"gate_entry_id,omitempty"`
	FuerteWeight *float64 `json:"fuerte_weight,omitempty"`
	FuerteCrates *int     `json:"fuerte_crates,omitempty"`
	HassWeight   *float64 `json:"hass_weight,omitempty"`
	HassCrates   *int     `json:"hass_crates,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

// WeightListResponse is the envelope for GET /api/weights. The server always
// sends this shape; older exports may be a bare array, which the
// reconciliation package normalizes on ingest.
type WeightListResponse struct {
	Weights          []*WeightRecord `json:"weights"`
	ProcessedGateIDs []string        `json:"processedGateIds"`
}
