package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"harir-backend/internal/models"
	"harir-backend/internal/repositories"
	"harir-backend/internal/timeutil"
)

// fakeVisitStore is an in-memory VisitStore with the same counter semantics
// as the real repository.
type fakeVisitStore struct {
	visits   map[int]*models.VehicleVisit
	nextID   int
	counters map[string]int
}

func newFakeVisitStore() *fakeVisitStore {
	return &fakeVisitStore{
		visits:   make(map[int]*models.VehicleVisit),
		counters: make(map[string]int),
	}
}

func (f *fakeVisitStore) Create(ctx context.Context, v *models.VehicleVisit) error {
	f.nextID++
	v.ID = f.nextID
	v.VisitNumber = 1
	for _, existing := range f.visits {
		if existing.SupplierID == v.SupplierID && existing.VisitNumber >= v.VisitNumber {
			v.VisitNumber = existing.VisitNumber + 1
		}
	}
	v.CreatedAt = timeutil.Now()
	v.UpdatedAt = v.CreatedAt
	clone := *v
	f.visits[v.ID] = &clone
	return nil
}

func (f *fakeVisitStore) Get(ctx context.Context, id int) (*models.VehicleVisit, error) {
	v, ok := f.visits[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (f *fakeVisitStore) List(ctx context.Context, limit int, includeSupplier bool) ([]*models.VehicleVisit, error) {
	var visits []*models.VehicleVisit
	for _, v := range f.visits {
		clone := *v
		visits = append(visits, &clone)
	}
	return visits, nil
}

func (f *fakeVisitStore) UpdateTransition(ctx context.Context, v *models.VehicleVisit) error {
	if _, ok := f.visits[v.ID]; !ok {
		return repositories.ErrNotFound
	}
	v.UpdatedAt = timeutil.Now()
	clone := *v
	f.visits[v.ID] = &clone
	return nil
}

func (f *fakeVisitStore) NextGateEntryNumber(ctx context.Context, day time.Time) (int, error) {
	key := timeutil.DateOnly(day)
	f.counters[key]++
	return f.counters[key], nil
}

// fakeSupplierStore is an in-memory SupplierStore keyed by phone.
type fakeSupplierStore struct {
	suppliers map[int]*models.Supplier
	byPhone   map[string]int
	nextID    int
}

func newFakeSupplierStore() *fakeSupplierStore {
	return &fakeSupplierStore{
		suppliers: make(map[int]*models.Supplier),
		byPhone:   make(map[string]int),
	}
}

func (f *fakeSupplierStore) Create(ctx context.Context, s *models.Supplier) error {
	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = timeutil.Now()
	s.UpdatedAt = s.CreatedAt
	clone := *s
	f.suppliers[s.ID] = &clone
	f.byPhone[s.Phone] = s.ID
	return nil
}

func (f *fakeSupplierStore) Get(ctx context.Context, id int) (*models.Supplier, error) {
	s, ok := f.suppliers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSupplierStore) GetByPhone(ctx context.Context, phone string) (*models.Supplier, error) {
	id, ok := f.byPhone[phone]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return f.Get(ctx, id)
}

func registerVisit(t *testing.T, svc *VisitService, phone string) *models.VehicleVisit {
	t.Helper()
	resp, err := svc.RegisterVisit(context.Background(), &models.RegisterVisitRequest{
		SupplierName: "Kipchoge Farms",
		Phone:        phone,
		VehicleReg:   "KDA 123X",
		DriverName:   "Daniel",
	})
	if err != nil {
		t.Fatalf("RegisterVisit: %v", err)
	}
	return resp.Visit
}

func transitionTo(t *testing.T, svc *VisitService, id int, status models.VisitStatus) *models.VehicleVisit {
	t.Helper()
	visit, err := svc.Transition(context.Background(), id, &models.UpdateVisitRequest{Status: status})
	if err != nil {
		t.Fatalf("Transition to %s: %v", status, err)
	}
	return visit
}

func TestRegisterVisitNewAndReturningSupplier(t *testing.T) {
	svc := NewVisitService(newFakeVisitStore(), newFakeSupplierStore())
	ctx := context.Background()

	resp, err := svc.RegisterVisit(ctx, &models.RegisterVisitRequest{
		SupplierName: "Kipchoge Farms",
		Phone:        "+254712345678",
		VehicleReg:   "KDA 123X",
	})
	if err != nil {
		t.Fatalf("RegisterVisit: %v", err)
	}
	if !resp.IsNewSupplier {
		t.Error("first registration should create the supplier")
	}
	if resp.Visit.Status != models.StatusPreRegistered {
		t.Errorf("status = %s, want Pre-registered", resp.Visit.Status)
	}
	if resp.Visit.GateEntryID != "" {
		t.Error("no gate entry id should exist before check-in")
	}
	if resp.Visit.VisitNumber != 1 {
		t.Errorf("visit number = %d, want 1", resp.Visit.VisitNumber)
	}

	// Same phone again: supplier resolved, not duplicated.
	resp2, err := svc.RegisterVisit(ctx, &models.RegisterVisitRequest{
		SupplierName: "Kipchoge Farms",
		Phone:        "+254712345678",
		VehicleReg:   "KDA 123X",
	})
	if err != nil {
		t.Fatalf("second RegisterVisit: %v", err)
	}
	if resp2.IsNewSupplier {
		t.Error("repeat phone should resolve the existing supplier")
	}
	if resp2.Supplier.ID != resp.Supplier.ID {
		t.Errorf("supplier id = %d, want %d", resp2.Supplier.ID, resp.Supplier.ID)
	}
	if resp2.Visit.VisitNumber != 2 {
		t.Errorf("visit number = %d, want 2", resp2.Visit.VisitNumber)
	}
	if !strings.Contains(resp2.Message, "visit #2") {
		t.Errorf("returning-supplier message missing visit number: %q", resp2.Message)
	}
}

func TestRegisterVisitValidation(t *testing.T) {
	svc := NewVisitService(newFakeVisitStore(), newFakeSupplierStore())
	ctx := context.Background()

	cases := []models.RegisterVisitRequest{
		{Phone: "+254712345678", VehicleReg: "KDA 123X"},
		{SupplierName: "X", Phone: "12", VehicleReg: "KDA 123X"},
		{SupplierName: "X", Phone: "not-a-phone", VehicleReg: "KDA 123X"},
		{SupplierName: "X", Phone: "+254712345678"},
	}
	for i, req := range cases {
		if _, err := svc.RegisterVisit(ctx, &req); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestCheckInMintsGateEntryID(t *testing.T) {
	svc := NewVisitService(newFakeVisitStore(), newFakeSupplierStore())

	visit := registerVisit(t, svc, "+254700000001")
	checkedIn := transitionTo(t, svc, visit.ID, models.StatusCheckedIn)

	day := timeutil.Now().Format(timeutil.CompactDateLayout)
	want := fmt.Sprintf("GATE-%s-0001", day)
	if checkedIn.GateEntryID != want {
		t.Errorf("gate entry id = %s, want %s", checkedIn.GateEntryID, want)
	}
	if checkedIn.CheckInTime == nil {
		t.Error("check-in time not set")
	}
	if checkedIn.IsRecheckIn {
		t.Error("first check-in flagged as re-check-in")
	}

	// Second vehicle the same day gets the next sequence number.
	visit2 := registerVisit(t, svc, "+254700000002")
	checkedIn2 := transitionTo(t, svc, visit2.ID, models.StatusCheckedIn)
	want2 := fmt.Sprintf("GATE-%s-0002", day)
	if checkedIn2.GateEntryID != want2 {
		t.Errorf("gate entry id = %s, want %s", checkedIn2.GateEntryID, want2)
	}
}

func TestLifecycleStrictOrder(t *testing.T) {
	svc := NewVisitService(newFakeVisitStore(), newFakeSupplierStore())
	ctx := context.Background()

	visit := registerVisit(t, svc, "+254700000003")

	// Cannot skip ahead from Pre-registered.
	if _, err := svc.Transition(ctx, visit.ID, &models.UpdateVisitRequest{Status: models.StatusPendingExit}); err == nil {
		t.Error("Pre-registered -> Pending-exit should be rejected")
	}
	if _, err := svc.Transition(ctx, visit.ID, &models.UpdateVisitRequest{Status: models.StatusCheckedOut}); err == nil {
		t.Error("Pre-registered -> Checked-out should be rejected")
	}

	// Rejected transition left the visit untouched.
	got, err := svc.GetVisit(ctx, visit.ID)
	if err != nil {
		t.Fatalf("GetVisit: %v", err)
	}
	if got.Status != models.StatusPreRegistered || got.GateEntryID != "" {
		t.Errorf("rejected transition mutated the visit: %+v", got)
	}

	transitionTo(t, svc, visit.ID, models.StatusCheckedIn)
	transitionTo(t, svc, visit.ID, models.StatusPendingExit)
	final := transitionTo(t, svc, visit.ID, models.StatusCheckedOut)

	if final.Status != models.StatusCheckedOut {
		t.Errorf("status = %s, want Checked-out", final.Status)
	}
	if final.CheckOutTime == nil {
		t.Error("check-out time not set on exit verification")
	}
	if final.GateEntryID == "" {
		t.Error("gate entry id must be retained through checkout")
	}
}

func TestRecheckInMintsFreshIdentity(t *testing.T) {
	svc := NewVisitService(newFakeVisitStore(), newFakeSupplierStore())

	visit := registerVisit(t, svc, "+254700000004")
	transitionTo(t, svc, visit.ID, models.StatusCheckedIn)
	transitionTo(t, svc, visit.ID, models.StatusPendingExit)
	out := transitionTo(t, svc, visit.ID, models.StatusCheckedOut)
	firstGateID := out.GateEntryID

	back := transitionTo(t, svc, visit.ID, models.StatusCheckedIn)

	if !back.IsRecheckIn {
		t.Error("re-check-in flag not set")
	}
	if back.GateEntryID == firstGateID {
		t.Error("re-check-in must mint a fresh gate entry id")
	}
	if back.PreviousGateEntryID != firstGateID {
		t.Errorf("previous gate entry id = %s, want %s", back.PreviousGateEntryID, firstGateID)
	}
	if back.CheckOutTime != nil {
		t.Error("check-out time should be cleared on re-check-in")
	}
	if back.Status != models.StatusCheckedIn {
		t.Errorf("status = %s, want Checked-in", back.Status)
	}
}

func TestTransitionUnknownVisit(t *testing.T) {
	svc := NewVisitService(newFakeVisitStore(), newFakeSupplierStore())

	_, err := svc.Transition(context.Background(), 99, &models.UpdateVisitRequest{Status: models.StatusCheckedIn})
	if err == nil || err.Error() != "visit not found" {
		t.Errorf("got %v, want visit not found", err)
	}
}
