package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"harir-backend/internal/metrics"
	"harir-backend/internal/models"
	"harir-backend/internal/reconciliation"
	"harir-backend/internal/repositories"
	"harir-backend/internal/timeutil"
	"harir-backend/internal/workflow"
)

// ErrAlreadyWeighed is returned when a visit has already produced an intake.
var ErrAlreadyWeighed = errors.New("already weighed")

// WeightStore is the weight persistence surface the service needs.
type WeightStore interface {
	Create(ctx context.Context, w *models.WeightRecord) error
	Get(ctx context.Context, id int) (*models.WeightRecord, error)
	List(ctx context.Context, limit int, desc bool) ([]*models.WeightRecord, error)
	Update(ctx context.Context, id int, req *models.UpdateWeightRequest) (*models.WeightRecord, error)
	Delete(ctx context.Context, id int) error
	NextPalletNumber(ctx context.Context, day time.Time) (int, error)
}

// WeightService owns weight capture and the reconciliation projection. The
// projection is rebuilt wholesale from every list fetch and patched
// optimistically after local writes; the deletion guard is computed against
// the in-memory list, not a re-fetch.
type WeightService struct {
	WeightRepo WeightStore
	VisitRepo  VisitStore

	mu      sync.RWMutex
	store   *reconciliation.Store
	records []*models.WeightRecord
}

func NewWeightService(weightRepo WeightStore, visitRepo VisitStore) *WeightService {
	return &WeightService{
		WeightRepo: weightRepo,
		VisitRepo:  visitRepo,
		store:      reconciliation.Empty(),
	}
}

// ListWeights fetches weight records and rebuilds the projection from them.
// The response always carries the enveloped shape with processedGateIds.
func (s *WeightService) ListWeights(ctx context.Context, limit int, desc bool) (*models.WeightListResponse, error) {
	records, err := s.WeightRepo.List(ctx, limit, desc)
	if err != nil {
		return nil, err
	}
	store := reconciliation.Build(records)

	s.mu.Lock()
	s.store = store
	s.records = records
	s.mu.Unlock()

	if records == nil {
		records = []*models.WeightRecord{}
	}
	return &models.WeightListResponse{
		Weights:          records,
		ProcessedGateIDs: store.GateIDs(),
	}, nil
}

// SelectForWeighing checks whether a visit may proceed to the capture form:
// the vehicle must be Checked-in and must not have been weighed already
// (gate entry id first, session-key fallback second).
func (s *WeightService) SelectForWeighing(ctx context.Context, visitID int) (*models.VehicleVisit, error) {
	visit, err := s.VisitRepo.Get(ctx, visitID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.New("visit not found")
		}
		return nil, err
	}
	if err := workflow.CanWeigh(visit.Status); err != nil {
		return nil, err
	}
	if err := s.ensureProjection(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	processed := s.store.IsProcessed(visit)
	s.mu.RUnlock()
	if processed {
		return nil, ErrAlreadyWeighed
	}
	return visit, nil
}

// CaptureWeight validates and records one pallet intake. Field validation
// runs before any write. When the request names a visit, the weighing guard
// applies and the gate entry id is copied from the visit; a visit without a
// gate entry id falls back to the session key. The projection is patched
// optimistically after the insert succeeds.
func (s *WeightService) CaptureWeight(ctx context.Context, req *models.CreateWeightRequest) (*models.WeightRecord, error) {
	fuerteWeight, err := parseWeightField(req.FuerteWeight, "fuerte_weight")
	if err != nil {
		return nil, err
	}
	hassWeight, err := parseWeightField(req.HassWeight, "hass_weight")
	if err != nil {
		return nil, err
	}
	fuerteCrates, err := parseCrateField(req.FuerteCrates, "fuerte_crates")
	if err != nil {
		return nil, err
	}
	hassCrates, err := parseCrateField(req.HassCrates, "hass_crates")
	if err != nil {
		return nil, err
	}
	if err := workflow.ValidateCapture(fuerteWeight, fuerteCrates, hassWeight, hassCrates); err != nil {
		metrics.WeightCaptureRejectedTotal.Inc()
		return nil, err
	}

	supplierID := req.SupplierID
	gateEntryID := req.GateEntryID
	checkInSession := req.CheckInSession

	if req.VisitID > 0 {
		visit, err := s.SelectForWeighing(ctx, req.VisitID)
		if err != nil {
			if errors.Is(err, ErrAlreadyWeighed) {
				metrics.WeightCaptureRejectedTotal.Inc()
			}
			return nil, err
		}
		supplierID = visit.SupplierID
		gateEntryID = visit.GateEntryID
		if gateEntryID == "" {
			if key, ok := reconciliation.VisitSessionKey(visit); ok {
				checkInSession = key
			}
		}
	} else if gateEntryID != "" {
		s.mu.RLock()
		dup := s.store.HasGateID(gateEntryID)
		s.mu.RUnlock()
		if dup {
			metrics.WeightCaptureRejectedTotal.Inc()
			return nil, ErrAlreadyWeighed
		}
	}

	now := timeutil.Now()
	n, err := s.WeightRepo.NextPalletNumber(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate pallet number: %w", err)
	}

	record := &models.WeightRecord{
		PalletID:       fmt.Sprintf("PAL-%03d/%s", n, now.Format(timeutil.PalletDateLayout)),
		SupplierID:     supplierID,
		GateEntryID:    gateEntryID,
		CheckInSession: checkInSession,
		FuerteWeight:   fuerteWeight,
		FuerteCrates:   fuerteCrates,
		HassWeight:     hassWeight,
		HassCrates:     hassCrates,
		Notes:          req.Notes,
	}
	if err := s.WeightRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	sessionKey, _ := reconciliation.RecordSessionKey(record)
	s.mu.Lock()
	s.store = s.store.OptimisticInsert(record.GateEntryID, sessionKey)
	s.records = append(s.records, record)
	s.mu.Unlock()

	metrics.WeightsCapturedTotal.Inc()
	return record, nil
}

// UpdateWeight applies a partial update, then rebuilds the projection since
// a gate entry id edit can change set membership.
func (s *WeightService) UpdateWeight(ctx context.Context, id int, req *models.UpdateWeightRequest) (*models.WeightRecord, error) {
	record, err := s.WeightRepo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.New("weight record not found")
		}
		return nil, err
	}

	records, err := s.WeightRepo.List(ctx, 0, true)
	if err == nil {
		s.mu.Lock()
		s.store = reconciliation.Build(records)
		s.records = records
		s.mu.Unlock()
	}
	return record, nil
}

// DeleteWeight removes a weight record and patches the projection. The gate
// entry id (and session key) stay marked processed while any other known
// record still carries them - several pallets can share one gate entry.
func (s *WeightService) DeleteWeight(ctx context.Context, id int) error {
	record := s.findKnown(id)
	if record == nil {
		var err error
		record, err = s.WeightRepo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return errors.New("weight record not found")
			}
			return err
		}
	}

	if err := s.WeightRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errors.New("weight record not found")
		}
		return err
	}

	sessionKey, _ := reconciliation.RecordSessionKey(record)

	s.mu.Lock()
	remaining := make([]*models.WeightRecord, 0, len(s.records))
	for _, rec := range s.records {
		if rec.ID != id {
			remaining = append(remaining, rec)
		}
	}
	s.records = remaining

	gateStillRef := reconciliation.GateIDReferencedElsewhere(remaining, record.GateEntryID, id)
	sessionStillRef := reconciliation.SessionKeyReferencedElsewhere(remaining, sessionKey, id)
	s.store = s.store.
		OptimisticRemove(record.GateEntryID, "", gateStillRef).
		OptimisticRemove("", sessionKey, sessionStillRef)
	s.mu.Unlock()

	return nil
}

// ensureProjection lazily builds the projection on first use so guards work
// before any explicit list fetch.
func (s *WeightService) ensureProjection(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.records != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	_, err := s.ListWeights(ctx, 0, true)
	return err
}

func (s *WeightService) findKnown(id int) *models.WeightRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

func parseWeightField(value, field string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number", field)
	}
	return f, nil
}

func parseCrateField(value, field string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", field)
	}
	return n, nil
}
