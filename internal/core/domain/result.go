package domain

import "time"

// Severity is a qualitative label derived from a numeric score.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// SeverityFromScore maps a 0-100 score to a severity label using fixed
// thresholds. Total over the whole score domain.
func SeverityFromScore(score float64) Severity {
	switch {
	case score >= 80:
		return SeverityCritical
	case score >= 60:
		return SeverityHigh
	case score >= 40:
		return SeverityMedium
	case score >= 20:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// Rank returns an ordinal for severity comparisons (critical highest).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ScoringResult is the output of a single engine run for one entity.
// Produced once per Score call; immutable after creation.
type ScoringResult struct {
	ID              string             `json:"id"`
	EngineName      string             `json:"engine_name"`
	EntityID        string             `json:"entity_id"`
	Score           float64            `json:"score"`
	Severity        Severity           `json:"severity"`
	Timestamp       time.Time          `json:"timestamp"`
	Details         map[string]any     `json:"details,omitempty"`
	Metrics         map[string]float64 `json:"metrics,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
}
