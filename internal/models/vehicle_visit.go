package models

import "time"

// VisitStatus is the closed set of vehicle visit lifecycle states.
// The wire values match what the dashboard has always displayed.
type VisitStatus string

const (
	StatusPreRegistered VisitStatus = "Pre-registered"
	StatusCheckedIn     VisitStatus = "Checked-in"
	StatusPendingExit   VisitStatus = "Pending-exit"
	StatusCheckedOut    VisitStatus = "Checked-out"
)

// Valid reports whether s is one of the known lifecycle states.
func (s VisitStatus) Valid() bool {
	switch s {
	case StatusPreRegistered, StatusCheckedIn, StatusPendingExit, StatusCheckedOut:
		return true
	}
	return false
}

// VehicleVisit represents one supplier vehicle visit through the gate.
//
// GateEntryID is assigned exactly once per check-in event and is scoped to
// the calendar day it was minted (GATE-YYYYMMDD-NNNN). It is absent while the
// visit is Pre-registered and retained through checkout for audit history.
// A re-check-in after checkout mints a fresh id and keeps the superseded one
// in PreviousGateEntryID.
type VehicleVisit struct {
	ID                  int         `json:"id"`
	SupplierID          int         `json:"supplier_id"`
	DriverName          string      `json:"driver_name"`
	DriverPhone         string      `json:"driver_phone"`
	VehicleReg          string      `json:"vehicle_reg"`
	VisitNumber         int         `json:"visit_number"` // 1-based per supplier; > 1 marks a returning supplier
	Status              VisitStatus `json:"status"`
	CheckInTime         *time.Time  `json:"check_in_time,omitempty"`
	CheckOutTime        *time.Time  `json:"check_out_time,omitempty"`
	GateEntryID         string      `json:"gate_entry_id,omitempty"`
	GateEntryNumber     int         `json:"gate_entry_number,omitempty"` // NNNN part, per-day sequence
	GateEntryDate       string      `json:"gate_entry_date,omitempty"`   // YYYY-MM-DD in EAT
	IsRecheckIn         bool        `json:"is_recheck_in"`
	PreviousGateEntryID string      `json:"previous_gate_entry_id,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`

	// Joined fields - populated when includeSupplier is requested
	Supplier *Supplier `json:"supplier,omitempty"`
}

// IsReturningSupplier reports whether this is a repeat visit by the supplier.
func (v *VehicleVisit) IsReturningSupplier() bool {
	return v.VisitNumber > 1
}

// RegisterVisitRequest is the request body for POST /api/vehicle-visits
type RegisterVisitRequest struct {
	SupplierName string `json:"supplier_name"`
	Phone        string `json:"phone"`
	Region       string `json:"region"`
	DriverName   string `json:"driver_name"`
	DriverPhone  string `json:"driver_phone"`
	VehicleReg   string `json:"vehicle_reg"`
}

// UpdateVisitRequest is the request body for PUT /api/vehicle-visits?id={id}.
// Only the status transition is client-driven; times default to server now.
type UpdateVisitRequest struct {
	Status       VisitStatus `json:"status"`
	CheckInTime  *time.Time  `json:"checkInTime,omitempty"`
	CheckOutTime *time.Time  `json:"checkOutTime,omitempty"`
}

// VisitListResponse is the envelope for GET /api/vehicle-visits.
type VisitListResponse struct {
	Visits []*VehicleVisit `json:"visits"`
}

// VisitResponse is the envelope for a single visit, returned by transition
// updates and id lookups.
type VisitResponse struct {
	Visit *VehicleVisit `json:"visit"`
}

// RegisterVisitResponse is the envelope for a successful registration.
type RegisterVisitResponse struct {
	Supplier      *Supplier     `json:"supplier"`
	Visit         *VehicleVisit `json:"visit"`
	IsNewSupplier bool          `json:"isNewSupplier"`
	Message       string        `json:"message"`
}
