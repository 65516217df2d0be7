package models

import "time"

// Supplier represents a farm/company that delivers produce to the warehouse.
// Suppliers are created implicitly on their first visit registration and
// resolved by phone number on repeat visits.
type Supplier struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	VehicleReg string    `json:"vehicle_reg"`
	Region     string    `json:"region"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CheckedInSupplier is a supplier currently on-site, joined with the
// gate entry details of their latest open visit.
type CheckedInSupplier struct {
	Supplier
	VisitID     int        `json:"visit_id"`
	GateEntryID string     `json:"gate_entry_id,omitempty"`
	CheckInTime *time.Time `json:"check_in_time,omitempty"`
	VisitNumber int        `json:"visit_number"`
}
