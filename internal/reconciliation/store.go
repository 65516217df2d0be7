// Package reconciliation answers "has this visit already been weighed?".
//
// The store is a pure projection over the most recent weight record list:
// every gate entry id seen on a record, plus a fallback session key for
// records that predate gate entry ids. It is rebuilt wholesale on each
// refresh and patched copy-on-write after a local write, so the next rebuild
// from server truth confirms or corrects the optimistic patch.
package reconciliation

import (
	"fmt"
	"sort"
	"time"

	"harir-backend/internal/models"
	"harir-backend/internal/timeutil"
)

// Store holds the processed-intake projection. Values are immutable: Build
// returns a fresh store and the optimistic patch methods return copies,
// leaving the receiver untouched.
type Store struct {
	processedGateIDs  map[string]struct{}
	processedCheckIns map[string]struct{}
}

// Empty returns a store with no processed intakes (session start state).
func Empty() *Store {
	return &Store{
		processedGateIDs:  make(map[string]struct{}),
		processedCheckIns: make(map[string]struct{}),
	}
}

// Build derives the projection from a weight record list. Records with a
// gate entry id feed processedGateIDs; independently, every record with a
// derivable session key feeds processedCheckIns. A record with neither
// contributes to neither set - it cannot suppress a future duplicate, which
// is a known gap for the oldest data, not something Build papers over.
//
// Membership depends only on the input records, never on their order.
func Build(records []*models.WeightRecord) *Store {
	s := Empty()
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if rec.GateEntryID != "" {
			s.processedGateIDs[rec.GateEntryID] = struct{}{}
		}
		if key, ok := RecordSessionKey(rec); ok {
			s.processedCheckIns[key] = struct{}{}
		}
	}
	return s
}

// DeriveSessionKey builds the fallback correlation key for a supplier on the
// EAT calendar day of t. Deliberately date-grained: two gate-id-less visits
// by the same supplier on the same day are indistinguishable.
func DeriveSessionKey(supplierID int, t time.Time) string {
	return fmt.Sprintf("%d_%s", supplierID, timeutil.DateOnly(t))
}

// RecordSessionKey returns the session key for a weight record: the stored
// check_in_session when present, otherwise synthesized from supplier and
// capture day. ok is false when no key can be derived.
func RecordSessionKey(rec *models.WeightRecord) (string, bool) {
	if rec.CheckInSession != "" {
		return rec.CheckInSession, true
	}
	if rec.SupplierID > 0 && !rec.CreatedAt.IsZero() {
		return DeriveSessionKey(rec.SupplierID, rec.CreatedAt), true
	}
	return "", false
}

// VisitSessionKey returns the fallback key for a visit, derived from its
// check-in time when set, otherwise its creation time. ok is false when the
// visit has no supplier or usable timestamp.
func VisitSessionKey(visit *models.VehicleVisit) (string, bool) {
	if visit.SupplierID <= 0 {
		return "", false
	}
	switch {
	case visit.CheckInTime != nil:
		return DeriveSessionKey(visit.SupplierID, *visit.CheckInTime), true
	case !visit.CreatedAt.IsZero():
		return DeriveSessionKey(visit.SupplierID, visit.CreatedAt), true
	}
	return "", false
}

// IsProcessed reports whether the visit has already produced a weight intake.
// Two-tier check, first match wins: the gate entry id is authoritative once
// present; the session key exists only to cover records captured before gate
// entry ids, and is the weaker of the two.
func (s *Store) IsProcessed(visit *models.VehicleVisit) bool {
	if visit == nil {
		return false
	}
	if visit.GateEntryID != "" {
		if _, ok := s.processedGateIDs[visit.GateEntryID]; ok {
			return true
		}
		return false
	}
	if key, ok := VisitSessionKey(visit); ok {
		_, hit := s.processedCheckIns[key]
		return hit
	}
	return false
}

// HasGateID reports whether the gate entry id is already marked processed.
func (s *Store) HasGateID(gateEntryID string) bool {
	_, ok := s.processedGateIDs[gateEntryID]
	return ok
}

// HasSessionKey reports whether the session key is already marked processed.
func (s *Store) HasSessionKey(key string) bool {
	_, ok := s.processedCheckIns[key]
	return ok
}

// OptimisticInsert returns a copy of the store with the given identifiers
// marked processed. Empty identifiers are ignored; re-inserting a present
// key is a no-op.
func (s *Store) OptimisticInsert(gateEntryID, sessionKey string) *Store {
	next := s.clone()
	if gateEntryID != "" {
		next.processedGateIDs[gateEntryID] = struct{}{}
	}
	if sessionKey != "" {
		next.processedCheckIns[sessionKey] = struct{}{}
	}
	return next
}

// OptimisticRemove returns a copy of the store with the identifiers cleared,
// unless stillReferenced is true: multiple pallets can share one gate entry,
// and deleting one pallet must not resurrect the pending state for a visit
// that still has other weighed pallets under the same id.
func (s *Store) OptimisticRemove(gateEntryID, sessionKey string, stillReferenced bool) *Store {
	if stillReferenced {
		return s
	}
	next := s.clone()
	delete(next.processedGateIDs, gateEntryID)
	delete(next.processedCheckIns, sessionKey)
	return next
}

// GateIDs returns the processed gate entry ids in sorted order, for the
// processedGateIds field of the weights list response.
func (s *Store) GateIDs() []string {
	ids := make([]string, 0, len(s.processedGateIDs))
	for id := range s.processedGateIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of processed gate ids and session keys.
func (s *Store) Len() (gateIDs, sessionKeys int) {
	return len(s.processedGateIDs), len(s.processedCheckIns)
}

func (s *Store) clone() *Store {
	next := &Store{
		processedGateIDs:  make(map[string]struct{}, len(s.processedGateIDs)),
		processedCheckIns: make(map[string]struct{}, len(s.processedCheckIns)),
	}
	for id := range s.processedGateIDs {
		next.processedGateIDs[id] = struct{}{}
	}
	for key := range s.processedCheckIns {
		next.processedCheckIns[key] = struct{}{}
	}
	return next
}

// GateIDReferencedElsewhere reports whether any record other than excludeID
// still carries the gate entry id. Used to compute the deletion guard from
// the in-memory list without a re-fetch.
func GateIDReferencedElsewhere(records []*models.WeightRecord, gateEntryID string, excludeID int) bool {
	if gateEntryID == "" {
		return false
	}
	for _, rec := range records {
		if rec.ID != excludeID && rec.GateEntryID == gateEntryID {
			return true
		}
	}
	return false
}

// SessionKeyReferencedElsewhere is the session-key counterpart of
// GateIDReferencedElsewhere.
func SessionKeyReferencedElsewhere(records []*models.WeightRecord, sessionKey string, excludeID int) bool {
	if sessionKey == "" {
		return false
	}
	for _, rec := range records {
		if rec.ID == excludeID {
			continue
		}
		if key, ok := RecordSessionKey(rec); ok && key == sessionKey {
			return true
		}
	}
	return false
}
