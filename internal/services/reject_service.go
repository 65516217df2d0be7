package services

import (
	"context"
	"errors"

	"harir-backend/internal/models"
	"harir-backend/internal/repositories"
)

// RejectStore is the reject persistence surface the service needs.
type RejectStore interface {
	Create(ctx context.Context, rec *models.RejectRecord) error
	List(ctx context.Context, limit int) ([]*models.RejectRecord, error)
}

type RejectService struct {
	RejectRepo RejectStore
	VisitRepo  VisitStore
}

func NewRejectService(rejectRepo RejectStore, visitRepo VisitStore) *RejectService {
	return &RejectService{
		RejectRepo: rejectRepo,
		VisitRepo:  visitRepo,
	}
}

// CreateReject logs a QC rejection. When the request names a visit, the
// supplier and gate entry id are taken from it so the rejection correlates
// with the intake it belongs to.
func (s *RejectService) CreateReject(ctx context.Context, req *models.CreateRejectRequest, userID int) (*models.RejectRecord, error) {
	if req.Variety != "fuerte" && req.Variety != "hass" {
		return nil, errors.New("variety must be 'fuerte' or 'hass'")
	}
	if req.Quantity <= 0 && req.Weight <= 0 {
		return nil, errors.New("a rejected quantity or weight is required")
	}
	if req.Reason == "" {
		return nil, errors.New("rejection reason is required")
	}

	rec := &models.RejectRecord{
		SupplierID:      req.SupplierID,
		Variety:         req.Variety,
		Quantity:        req.Quantity,
		Weight:          req.Weight,
		Reason:          req.Reason,
		CreatedByUserID: userID,
	}

	if req.VisitID > 0 {
		visit, err := s.VisitRepo.Get(ctx, req.VisitID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, errors.New("visit not found")
			}
			return nil, err
		}
		rec.SupplierID = visit.SupplierID
		rec.GateEntryID = visit.GateEntryID
	}

	if rec.SupplierID <= 0 {
		return nil, errors.New("supplier is required")
	}

	if err := s.RejectRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRejects returns the most recent reject records
func (s *RejectService) ListRejects(ctx context.Context, limit int) ([]*models.RejectRecord, error) {
	return s.RejectRepo.List(ctx, limit)
}
