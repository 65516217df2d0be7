package reconciliation

import (
	"encoding/json"
	"fmt"

	"harir-backend/internal/models"
)

// WeightsPayload is the normalized form of a weights listing. Historical
// exports are a bare JSON array; the current API wraps the list in
// {"weights": [...], "processedGateIds": [...]}. Both shapes are accepted
// here at the boundary so nothing deeper ever branches on shape.
type WeightsPayload struct {
	Weights          []*models.WeightRecord
	ProcessedGateIDs []string
}

type enveloped struct {
	Weights          []*models.WeightRecord `json:"weights"`
	ProcessedGateIDs []string               `json:"processedGateIds"`
}

// UnmarshalJSON accepts either payload shape. For the bare-array form the
// processed gate ids are recomputed from the records themselves.
func (p *WeightsPayload) UnmarshalJSON(data []byte) error {
	trimmed := firstNonSpace(data)
	switch trimmed {
	case '[':
		var records []*models.WeightRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("weights payload: bare array: %w", err)
		}
		p.Weights = records
		p.ProcessedGateIDs = Build(records).GateIDs()
		return nil
	case '{':
		var env enveloped
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("weights payload: envelope: %w", err)
		}
		p.Weights = env.Weights
		p.ProcessedGateIDs = env.ProcessedGateIDs
		if p.ProcessedGateIDs == nil {
			p.ProcessedGateIDs = Build(env.Weights).GateIDs()
		}
		return nil
	}
	return fmt.Errorf("weights payload: expected array or object, got %q", string(trimmed))
}

func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
