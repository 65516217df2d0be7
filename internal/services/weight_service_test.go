package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"harir-backend/internal/models"
	"harir-backend/internal/repositories"
	"harir-backend/internal/timeutil"
)

// fakeWeightStore is an in-memory WeightStore with the same daily counter
// semantics as the real repository.
type fakeWeightStore struct {
	records  map[int]*models.WeightRecord
	nextID   int
	counters map[string]int
	creates  int
}

func newFakeWeightStore() *fakeWeightStore {
	return &fakeWeightStore{
		records:  make(map[int]*models.WeightRecord),
		counters: make(map[string]int),
	}
}

func (f *fakeWeightStore) Create(ctx context.Context, w *models.WeightRecord) error {
	f.creates++
	f.nextID++
	w.ID = f.nextID
	w.CreatedAt = timeutil.Now()
	w.UpdatedAt = w.CreatedAt
	clone := *w
	f.records[w.ID] = &clone
	return nil
}

func (f *fakeWeightStore) Get(ctx context.Context, id int) (*models.WeightRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (f *fakeWeightStore) List(ctx context.Context, limit int, desc bool) ([]*models.WeightRecord, error) {
	var records []*models.WeightRecord
	for _, rec := range f.records {
		clone := *rec
		records = append(records, &clone)
	}
	return records, nil
}

func (f *fakeWeightStore) Update(ctx context.Context, id int, req *models.UpdateWeightRequest) (*models.WeightRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if req.GateEntryID != nil && *req.GateEntryID != "" {
		rec.GateEntryID = *req.GateEntryID
	}
	if req.FuerteWeight != nil {
		rec.FuerteWeight = *req.FuerteWeight
	}
	if req.HassWeight != nil {
		rec.HassWeight = *req.HassWeight
	}
	if req.FuerteCrates != nil {
		rec.FuerteCrates = *req.FuerteCrates
	}
	if req.HassCrates != nil {
		rec.HassCrates = *req.HassCrates
	}
	if req.Notes != nil {
		rec.Notes = *req.Notes
	}
	rec.UpdatedAt = timeutil.Now()
	clone := *rec
	return &clone, nil
}

func (f *fakeWeightStore) Delete(ctx context.Context, id int) error {
	if _, ok := f.records[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeWeightStore) NextPalletNumber(ctx context.Context, day time.Time) (int, error) {
	key := timeutil.DateOnly(day)
	f.counters[key]++
	return f.counters[key], nil
}

// checkedInVisit registers and checks in a visit, returning its current state.
func checkedInVisit(t *testing.T, visitSvc *VisitService, phone string) *models.VehicleVisit {
	t.Helper()
	visit := registerVisit(t, visitSvc, phone)
	return transitionTo(t, visitSvc, visit.ID, models.StatusCheckedIn)
}

func newWeightFixture(t *testing.T) (*WeightService, *VisitService, *fakeWeightStore) {
	t.Helper()
	visitStore := newFakeVisitStore()
	weightStore := newFakeWeightStore()
	visitSvc := NewVisitService(visitStore, newFakeSupplierStore())
	weightSvc := NewWeightService(weightStore, visitStore)
	return weightSvc, visitSvc, weightStore
}

func TestCaptureWeightFromVisit(t *testing.T) {
	weightSvc, visitSvc, _ := newWeightFixture(t)
	ctx := context.Background()

	visit := checkedInVisit(t, visitSvc, "+254700000010")

	record, err := weightSvc.CaptureWeight(ctx, &models.CreateWeightRequest{
		VisitID:      visit.ID,
		FuerteWeight: "120.5",
		FuerteCrates: "10",
	})
	if err != nil {
		t.Fatalf("CaptureWeight: %v", err)
	}
	if record.GateEntryID != visit.GateEntryID {
		t.Errorf("gate entry id = %s, want %s (copied from visit)", record.GateEntryID, visit.GateEntryID)
	}
	if record.SupplierID != visit.SupplierID {
		t.Errorf("supplier id = %d, want %d", record.SupplierID, visit.SupplierID)
	}
	wantPrefix := "PAL-001/"
	if !strings.HasPrefix(record.PalletID, wantPrefix) {
		t.Errorf("pallet id = %s, want prefix %s", record.PalletID, wantPrefix)
	}

	// The same visit is now blocked from a second capture.
	if _, err := weightSvc.SelectForWeighing(ctx, visit.ID); !errors.Is(err, ErrAlreadyWeighed) {
		t.Errorf("SelectForWeighing after capture = %v, want ErrAlreadyWeighed", err)
	}
	if _, err := weightSvc.CaptureWeight(ctx, &models.CreateWeightRequest{
		VisitID:      visit.ID,
		FuerteWeight: "50",
		FuerteCrates: "5",
	}); !errors.Is(err, ErrAlreadyWeighed) {
		t.Errorf("second capture = %v, want ErrAlreadyWeighed", err)
	}
}

func TestCaptureWeightValidationBeforeWrite(t *testing.T) {
	weightSvc, visitSvc, weightStore := newWeightFixture(t)
	ctx := context.Background()

	visit := checkedInVisit(t, visitSvc, "+254700000011")

	cases := []models.CreateWeightRequest{
		{VisitID: visit.ID},
		{VisitID: visit.ID, FuerteWeight: "120.5"},
		{VisitID: visit.ID, FuerteCrates: "10", HassCrates: "2"},
		{VisitID: visit.ID, FuerteWeight: "-5", FuerteCrates: "10"},
		{VisitID: visit.ID, FuerteWeight: "abc", FuerteCrates: "10"},
		{VisitID: visit.ID, FuerteWeight: "120", FuerteCrates: "-1"},
	}
	for i, req := range cases {
		if _, err := weightSvc.CaptureWeight(ctx, &req); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if weightStore.creates != 0 {
		t.Errorf("validation failures reached the store %d times", weightStore.creates)
	}

	// The visit is still capturable after rejected attempts.
	if _, err := weightSvc.SelectForWeighing(ctx, visit.ID); err != nil {
		t.Errorf("visit should still be selectable: %v", err)
	}
}

func TestSelectForWeighingStatusGuard(t *testing.T) {
	weightSvc, visitSvc, _ := newWeightFixture(t)
	ctx := context.Background()

	visit := registerVisit(t, visitSvc, "+254700000012")

	_, err := weightSvc.SelectForWeighing(ctx, visit.ID)
	if err == nil || !strings.Contains(err.Error(), "cannot select for weighing") {
		t.Errorf("Pre-registered visit selectable: %v", err)
	}

	transitionTo(t, visitSvc, visit.ID, models.StatusCheckedIn)
	if _, err := weightSvc.SelectForWeighing(ctx, visit.ID); err != nil {
		t.Errorf("Checked-in visit should be selectable: %v", err)
	}
}

func TestCaptureWeightDirectGateIDDuplicate(t *testing.T) {
	weightSvc, _, _ := newWeightFixture(t)
	ctx := context.Background()

	first := &models.CreateWeightRequest{
		SupplierID:   3,
		GateEntryID:  "GATE-20260820-0001",
		FuerteWeight: "100",
		FuerteCrates: "8",
	}
	if _, err := weightSvc.CaptureWeight(ctx, first); err != nil {
		t.Fatalf("first capture: %v", err)
	}

	dup := &models.CreateWeightRequest{
		SupplierID:  3,
		GateEntryID: "GATE-20260820-0001",
		HassWeight:  "60",
		HassCrates:  "6",
	}
	if _, err := weightSvc.CaptureWeight(ctx, dup); !errors.Is(err, ErrAlreadyWeighed) {
		t.Errorf("duplicate gate id capture = %v, want ErrAlreadyWeighed", err)
	}
}

func TestListWeightsEnvelope(t *testing.T) {
	weightSvc, visitSvc, _ := newWeightFixture(t)
	ctx := context.Background()

	visit := checkedInVisit(t, visitSvc, "+254700000013")
	if _, err := weightSvc.CaptureWeight(ctx, &models.CreateWeightRequest{
		VisitID:    visit.ID,
		HassWeight: "80",
		HassCrates: "8",
	}); err != nil {
		t.Fatalf("CaptureWeight: %v", err)
	}

	resp, err := weightSvc.ListWeights(ctx, 0, true)
	if err != nil {
		t.Fatalf("ListWeights: %v", err)
	}
	if len(resp.Weights) != 1 {
		t.Fatalf("got %d weights, want 1", len(resp.Weights))
	}
	if len(resp.ProcessedGateIDs) != 1 || resp.ProcessedGateIDs[0] != visit.GateEntryID {
		t.Errorf("processedGateIds = %v, want [%s]", resp.ProcessedGateIDs, visit.GateEntryID)
	}
}

func TestDeleteWeightReleasesGuard(t *testing.T) {
	weightSvc, visitSvc, _ := newWeightFixture(t)
	ctx := context.Background()

	visit := checkedInVisit(t, visitSvc, "+254700000014")
	record, err := weightSvc.CaptureWeight(ctx, &models.CreateWeightRequest{
		VisitID:      visit.ID,
		FuerteWeight: "90",
		FuerteCrates: "9",
	})
	if err != nil {
		t.Fatalf("CaptureWeight: %v", err)
	}

	if err := weightSvc.DeleteWeight(ctx, record.ID); err != nil {
		t.Fatalf("DeleteWeight: %v", err)
	}

	// With its only pallet gone the visit is pending again.
	if _, err := weightSvc.SelectForWeighing(ctx, visit.ID); err != nil {
		t.Errorf("visit should be selectable after deletion: %v", err)
	}
}

func TestDeleteWeightKeepsSharedGateID(t *testing.T) {
	weightSvc, _, _ := newWeightFixture(t)
	ctx := context.Background()

	// Two pallets under one gate entry.
	gateID := "GATE-20260821-0001"
	first, err := weightSvc.CaptureWeight(ctx, &models.CreateWeightRequest{
		SupplierID: 5, GateEntryID: gateID, FuerteWeight: "100", FuerteCrates: "10",
	})
	if err != nil {
		t.Fatalf("first capture: %v", err)
	}

	// Second pallet for the same gate entry has to bypass the duplicate
	// guard the way a deliberate split intake would: via update.
	second, err := weightSvc.CaptureWeight(ctx, &models.CreateWeightRequest{
		SupplierID: 5, FuerteWeight: "40", FuerteCrates: "4",
	})
	if err != nil {
		t.Fatalf("second capture: %v", err)
	}
	if _, err := weightSvc.UpdateWeight(ctx, second.ID, &models.UpdateWeightRequest{GateEntryID: &gateID}); err != nil {
		t.Fatalf("UpdateWeight: %v", err)
	}

	// Deleting one pallet must not clear the gate id while the other remains.
	if err := weightSvc.DeleteWeight(ctx, first.ID); err != nil {
		t.Fatalf("DeleteWeight: %v", err)
	}

	resp, err := weightSvc.ListWeights(ctx, 0, true)
	if err != nil {
		t.Fatalf("ListWeights: %v", err)
	}
	found := false
	for _, id := range resp.ProcessedGateIDs {
		if id == gateID {
			found = true
		}
	}
	if !found {
		t.Errorf("gate id %s should survive deletion of one of two pallets", gateID)
	}

	// Deleting the last pallet releases it.
	if err := weightSvc.DeleteWeight(ctx, second.ID); err != nil {
		t.Fatalf("DeleteWeight second: %v", err)
	}
	resp, err = weightSvc.ListWeights(ctx, 0, true)
	if err != nil {
		t.Fatalf("ListWeights: %v", err)
	}
	for _, id := range resp.ProcessedGateIDs {
		if id == gateID {
			t.Errorf("gate id %s should be released after the last pallet is deleted", gateID)
		}
	}
}

func TestSessionKeyFallbackForVisitWithoutGateID(t *testing.T) {
	visitStore := newFakeVisitStore()
	weightSvc := NewWeightService(newFakeWeightStore(), visitStore)
	ctx := context.Background()

	// A legacy visit: checked in by hand without a gate entry id.
	checkIn := timeutil.Now()
	legacy := &models.VehicleVisit{SupplierID: 9, Status: models.StatusCheckedIn}
	if err := visitStore.Create(ctx, legacy); err != nil {
		t.Fatalf("create visit: %v", err)
	}
	legacy.CheckInTime = &checkIn
	legacy.Status = models.StatusCheckedIn
	if err := visitStore.UpdateTransition(ctx, legacy); err != nil {
		t.Fatalf("update visit: %v", err)
	}

	if _, err := weightSvc.CaptureWeight(ctx, &models.CreateWeightRequest{
		VisitID:      legacy.ID,
		FuerteWeight: "70",
		FuerteCrates: "7",
	}); err != nil {
		t.Fatalf("CaptureWeight: %v", err)
	}

	// The capture stored the session key, so the visit now reads processed.
	if _, err := weightSvc.SelectForWeighing(ctx, legacy.ID); !errors.Is(err, ErrAlreadyWeighed) {
		t.Errorf("session-key fallback should block a second capture, got %v", err)
	}
}

func TestRecheckInAllowsNewCapture(t *testing.T) {
	weightSvc, visitSvc, _ := newWeightFixture(t)
	ctx := context.Background()

	visit := checkedInVisit(t, visitSvc, "+254700000015")
	if _, err := weightSvc.CaptureWeight(ctx, &models.CreateWeightRequest{
		VisitID: visit.ID, FuerteWeight: "110", FuerteCrates: "11",
	}); err != nil {
		t.Fatalf("CaptureWeight: %v", err)
	}

	transitionTo(t, visitSvc, visit.ID, models.StatusPendingExit)
	transitionTo(t, visitSvc, visit.ID, models.StatusCheckedOut)
	back := transitionTo(t, visitSvc, visit.ID, models.StatusCheckedIn)

	// Fresh gate entry id: the earlier intake no longer blocks weighing.
	got, err := weightSvc.SelectForWeighing(ctx, back.ID)
	if err != nil {
		t.Fatalf("SelectForWeighing after re-check-in: %v", err)
	}
	if got.GateEntryID == visit.GateEntryID {
		t.Error("re-check-in should carry a fresh gate entry id")
	}

	if _, err := weightSvc.CaptureWeight(ctx, &models.CreateWeightRequest{
		VisitID: back.ID, HassWeight: "95", HassCrates: "9",
	}); err != nil {
		t.Errorf("capture after re-check-in: %v", err)
	}
}

func TestDeleteWeightUnknownRecord(t *testing.T) {
	weightSvc, _, _ := newWeightFixture(t)

	err := weightSvc.DeleteWeight(context.Background(), 42)
	if err == nil || err.Error() != "weight record not found" {
		t.Errorf("got %v, want weight record not found", err)
	}
}
