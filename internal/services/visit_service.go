package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"harir-backend/internal/cache"
	"harir-backend/internal/metrics"
	"harir-backend/internal/models"
	"harir-backend/internal/repositories"
	"harir-backend/internal/timeutil"
	"harir-backend/internal/workflow"
)

// VisitStore is the visit persistence surface the service needs. Satisfied
// by repositories.VisitRepository; tests substitute an in-memory fake.
type VisitStore interface {
	Create(ctx context.Context, v *models.VehicleVisit) error
	Get(ctx context.Context, id int) (*models.VehicleVisit, error)
	List(ctx context.Context, limit int, includeSupplier bool) ([]*models.VehicleVisit, error)
	UpdateTransition(ctx context.Context, v *models.VehicleVisit) error
	NextGateEntryNumber(ctx context.Context, day time.Time) (int, error)
}

// SupplierStore is the supplier persistence surface the service needs.
type SupplierStore interface {
	Create(ctx context.Context, s *models.Supplier) error
	Get(ctx context.Context, id int) (*models.Supplier, error)
	GetByPhone(ctx context.Context, phone string) (*models.Supplier, error)
}

type VisitService struct {
	VisitRepo    VisitStore
	SupplierRepo SupplierStore
}

func NewVisitService(visitRepo VisitStore, supplierRepo SupplierStore) *VisitService {
	return &VisitService{
		VisitRepo:    visitRepo,
		SupplierRepo: supplierRepo,
	}
}

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{9,13}$`)

// RegisterVisit creates a Pre-registered visit, creating the supplier on
// first contact and resolving repeat suppliers by phone. No gate entry is
// assigned at this stage.
func (s *VisitService) RegisterVisit(ctx context.Context, req *models.RegisterVisitRequest) (*models.RegisterVisitResponse, error) {
	if req.SupplierName == "" {
		return nil, errors.New("supplier name is required")
	}
	if !phoneRegex.MatchString(req.Phone) {
		return nil, errors.New("phone must be 9 to 13 digits")
	}
	if req.VehicleReg == "" {
		return nil, errors.New("vehicle registration is required")
	}

	supplier, err := s.SupplierRepo.GetByPhone(ctx, req.Phone)
	isNew := false
	if errors.Is(err, repositories.ErrNotFound) {
		supplier = &models.Supplier{
			Name:       req.SupplierName,
			Phone:      req.Phone,
			VehicleReg: req.VehicleReg,
			Region:     req.Region,
		}
		if err := s.SupplierRepo.Create(ctx, supplier); err != nil {
			return nil, err
		}
		isNew = true
	} else if err != nil {
		return nil, err
	}

	visit := &models.VehicleVisit{
		SupplierID:  supplier.ID,
		DriverName:  req.DriverName,
		DriverPhone: req.DriverPhone,
		VehicleReg:  req.VehicleReg,
		Status:      models.StatusPreRegistered,
	}
	if err := s.VisitRepo.Create(ctx, visit); err != nil {
		return nil, err
	}

	message := "Visit registered"
	if visit.IsReturningSupplier() {
		message = fmt.Sprintf("Visit registered (visit #%d for %s)", visit.VisitNumber, supplier.Name)
	}

	return &models.RegisterVisitResponse{
		Supplier:      supplier,
		Visit:         visit,
		IsNewSupplier: isNew,
		Message:       message,
	}, nil
}

// GetVisit retrieves a visit by ID
func (s *VisitService) GetVisit(ctx context.Context, id int) (*models.VehicleVisit, error) {
	return s.VisitRepo.Get(ctx, id)
}

// ListVisits returns the most recent visits
func (s *VisitService) ListVisits(ctx context.Context, limit int, includeSupplier bool) ([]*models.VehicleVisit, error) {
	return s.VisitRepo.List(ctx, limit, includeSupplier)
}

// Transition applies a lifecycle transition requested by the dashboard.
// Guards run before any write; a rejected transition leaves the visit
// untouched. Check-in mints the gate entry id; re-check-in from Checked-out
// mints a fresh one and records the superseded id.
func (s *VisitService) Transition(ctx context.Context, id int, req *models.UpdateVisitRequest) (*models.VehicleVisit, error) {
	visit, err := s.VisitRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.New("visit not found")
		}
		return nil, err
	}

	action, err := workflow.ActionForTarget(req.Status)
	if err != nil {
		return nil, err
	}
	next, err := workflow.Next(visit.Status, action)
	if err != nil {
		return nil, err
	}

	switch action {
	case workflow.ActionCheckIn:
		now := timeutil.Now()
		if req.CheckInTime != nil {
			now = timeutil.ToEAT(*req.CheckInTime)
		}
		n, err := s.VisitRepo.NextGateEntryNumber(ctx, now)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate gate entry number: %w", err)
		}
		if visit.Status == models.StatusCheckedOut {
			visit.IsRecheckIn = true
			visit.PreviousGateEntryID = visit.GateEntryID
		}
		visit.GateEntryNumber = n
		visit.GateEntryDate = timeutil.DateOnly(now)
		visit.GateEntryID = fmt.Sprintf("GATE-%s-%04d", now.Format(timeutil.CompactDateLayout), n)
		visit.CheckInTime = &now
		visit.CheckOutTime = nil
		metrics.VisitsCheckedInTotal.Inc()

	case workflow.ActionBeginCheckOut:
		// Gate entry id is retained; the vehicle is still on-site.

	case workflow.ActionVerifyExit:
		now := timeutil.Now()
		if req.CheckOutTime != nil {
			now = timeutil.ToEAT(*req.CheckOutTime)
		}
		visit.CheckOutTime = &now
	}

	visit.Status = next
	if err := s.VisitRepo.UpdateTransition(ctx, visit); err != nil {
		return nil, err
	}

	// The on-site supplier list changed; next read rebuilds it.
	cache.InvalidateCheckedInSuppliers(ctx)

	return visit, nil
}
