package services

import (
	"context"
	"testing"

	"harir-backend/internal/models"
)

type fakeRejectStore struct {
	records []*models.RejectRecord
}

func (f *fakeRejectStore) Create(ctx context.Context, rec *models.RejectRecord) error {
	rec.ID = len(f.records) + 1
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRejectStore) List(ctx context.Context, limit int) ([]*models.RejectRecord, error) {
	return f.records, nil
}

func TestCreateRejectFromVisit(t *testing.T) {
	visitStore := newFakeVisitStore()
	visitSvc := NewVisitService(visitStore, newFakeSupplierStore())
	rejectSvc := NewRejectService(&fakeRejectStore{}, visitStore)
	ctx := context.Background()

	visit := checkedInVisit(t, visitSvc, "+254700000020")

	rec, err := rejectSvc.CreateReject(ctx, &models.CreateRejectRequest{
		VisitID:  visit.ID,
		Variety:  "hass",
		Quantity: 12,
		Reason:   "bruising",
	}, 7)
	if err != nil {
		t.Fatalf("CreateReject: %v", err)
	}
	if rec.SupplierID != visit.SupplierID {
		t.Errorf("supplier id = %d, want %d (copied from visit)", rec.SupplierID, visit.SupplierID)
	}
	if rec.GateEntryID != visit.GateEntryID {
		t.Errorf("gate entry id = %s, want %s", rec.GateEntryID, visit.GateEntryID)
	}
	if rec.CreatedByUserID != 7 {
		t.Errorf("created by = %d, want 7", rec.CreatedByUserID)
	}
}

func TestCreateRejectValidation(t *testing.T) {
	rejectSvc := NewRejectService(&fakeRejectStore{}, newFakeVisitStore())
	ctx := context.Background()

	cases := []models.CreateRejectRequest{
		{SupplierID: 1, Variety: "mango", Quantity: 3, Reason: "x"},
		{SupplierID: 1, Variety: "hass", Reason: "x"},
		{SupplierID: 1, Variety: "fuerte", Quantity: 3},
		{Variety: "fuerte", Quantity: 3, Reason: "x"},
	}
	for i, req := range cases {
		if _, err := rejectSvc.CreateReject(ctx, &req, 1); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestCreateRejectUnknownVisit(t *testing.T) {
	rejectSvc := NewRejectService(&fakeRejectStore{}, newFakeVisitStore())

	_, err := rejectSvc.CreateReject(context.Background(), &models.CreateRejectRequest{
		VisitID: 55, Variety: "hass", Quantity: 2, Reason: "mold",
	}, 1)
	if err == nil || err.Error() != "visit not found" {
		t.Errorf("got %v, want visit not found", err)
	}
}
