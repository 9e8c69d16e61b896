package domain

import "time"

// Baseline is a per-entity snapshot of properties and signals used as the
// reference point for drift detection. Baselines are replaced wholesale on
// update, never partially mutated.
type Baseline struct {
	EntityID   string            `json:"entity_id"`
	Properties map[string]string `json:"properties,omitempty"`
	Signals    []Signal          `json:"signals,omitempty"`
	CapturedAt time.Time         `json:"captured_at"`
}

// Clone returns a deep copy so the stored record can never be observed
// partially applied while a concurrent writer replaces it.
func (b Baseline) Clone() Baseline {
	cp := Baseline{
		EntityID:   b.EntityID,
		CapturedAt: b.CapturedAt,
	}
	if b.Properties != nil {
		cp.Properties = make(map[string]string, len(b.Properties))
		for k, v := range b.Properties {
			cp.Properties[k] = v
		}
	}
	if b.Signals != nil {
		cp.Signals = make([]Signal, len(b.Signals))
		for i, s := range b.Signals {
			if s.Data != nil {
				data := make(map[string]any, len(s.Data))
				for k, v := range s.Data {
					data[k] = v
				}
				s.Data = data
			}
			cp.Signals[i] = s
		}
	}
	return cp
}
