package reconciliation

import (
	"encoding/json"
	"testing"
)

func TestWeightsPayloadBareArray(t *testing.T) {
	data := []byte(`[
		{"id": 1, "pallet_id": "PAL-001/0810", "supplier_id": 4, "gate_entry_id": "GATE-20260810-0001",
		 "fuerte_weight": 120.5, "fuerte_crates": 10, "hass_weight": 0, "hass_crates": 0},
		{"id": 2, "pallet_id": "PAL-002/0810", "supplier_id": 7, "check_in_session": "7_2026-08-10",
		 "fuerte_weight": 0, "fuerte_crates": 0, "hass_weight": 80, "hass_crates": 8}
	]`)

	var p WeightsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("bare array: %v", err)
	}
	if len(p.Weights) != 2 {
		t.Fatalf("got %d records, want 2", len(p.Weights))
	}
	// Gate ids are recomputed from the records for the bare-array form.
	if len(p.ProcessedGateIDs) != 1 || p.ProcessedGateIDs[0] != "GATE-20260810-0001" {
		t.Errorf("recomputed gate ids = %v", p.ProcessedGateIDs)
	}
}

func TestWeightsPayloadEnvelope(t *testing.T) {
	data := []byte(`{
		"weights": [{"id": 1, "pallet_id": "PAL-001/0811", "supplier_id": 2, "gate_entry_id": "GATE-20260811-0001",
			"fuerte_weight": 50, "fuerte_crates": 5, "hass_weight": 0, "hass_crates": 0}],
		"processedGateIds": ["GATE-20260811-0001", "GATE-20260810-0004"]
	}`)

	var p WeightsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if len(p.Weights) != 1 {
		t.Fatalf("got %d records, want 1", len(p.Weights))
	}
	// The envelope's own gate id list is trusted, including ids whose records
	// were trimmed from the export.
	if len(p.ProcessedGateIDs) != 2 {
		t.Errorf("gate ids = %v, want the envelope's two", p.ProcessedGateIDs)
	}
}

func TestWeightsPayloadEnvelopeWithoutGateIDs(t *testing.T) {
	data := []byte(`{"weights": [{"id": 3, "pallet_id": "PAL-003/0812", "supplier_id": 9,
		"gate_entry_id": "GATE-20260812-0002", "fuerte_weight": 30, "fuerte_crates": 3,
		"hass_weight": 0, "hass_crates": 0}]}`)

	var p WeightsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("envelope without ids: %v", err)
	}
	if len(p.ProcessedGateIDs) != 1 || p.ProcessedGateIDs[0] != "GATE-20260812-0002" {
		t.Errorf("gate ids should be recomputed when the envelope omits them, got %v", p.ProcessedGateIDs)
	}
}

func TestWeightsPayloadLeadingWhitespace(t *testing.T) {
	var p WeightsPayload
	if err := json.Unmarshal([]byte("  \n\t[]"), &p); err != nil {
		t.Fatalf("leading whitespace: %v", err)
	}
	if len(p.Weights) != 0 {
		t.Errorf("got %d records from empty array", len(p.Weights))
	}
}

func TestWeightsPayloadRejectsOtherShapes(t *testing.T) {
	var p WeightsPayload
	if err := json.Unmarshal([]byte(`"weights"`), &p); err == nil {
		t.Error("string payload should be rejected")
	}
	if err := json.Unmarshal([]byte(`42`), &p); err == nil {
		t.Error("number payload should be rejected")
	}
}
