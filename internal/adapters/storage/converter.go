package storage

import (
	"encoding/json"

	"github.com/lcalzada-xor/riskmap/internal/core/domain"
)

func toBaselineModel(entityID string, b domain.Baseline) (BaselineModel, error) {
	props, err := json.Marshal(b.Properties)
	if err != nil {
		return BaselineModel{}, err
	}
	signals, err := json.Marshal(b.Signals)
	if err != nil {
		return BaselineModel{}, err
	}
	return BaselineModel{
		EntityID:   entityID,
		Properties: string(props),
		Signals:    string(signals),
		CapturedAt: b.CapturedAt,
	}, nil
}

func toBaseline(m BaselineModel) (domain.Baseline, error) {
	b := domain.Baseline{
		EntityID:   m.EntityID,
		CapturedAt: m.CapturedAt,
	}
	if m.Properties != "" {
		if err := json.Unmarshal([]byte(m.Properties), &b.Properties); err != nil {
			return domain.Baseline{}, err
		}
	}
	if m.Signals != "" {
		if err := json.Unmarshal([]byte(m.Signals), &b.Signals); err != nil {
			return domain.Baseline{}, err
		}
	}
	return b, nil
}

func toResultModel(r domain.ScoringResult) (ResultModel, error) {
	details, err := json.Marshal(r.Details)
	if err != nil {
		return ResultModel{}, err
	}
	metrics, err := json.Marshal(r.Metrics)
	if err != nil {
		return ResultModel{}, err
	}
	recs, err := json.Marshal(r.Recommendations)
	if err != nil {
		return ResultModel{}, err
	}
	return ResultModel{
		ID:              r.ID,
		EngineName:      r.EngineName,
		EntityID:        r.EntityID,
		Score:           r.Score,
		Severity:        string(r.Severity),
		Timestamp:       r.Timestamp,
		Details:         string(details),
		Metrics:         string(metrics),
		Recommendations: string(recs),
	}, nil
}

func toResult(m ResultModel) (domain.ScoringResult, error) {
	r := domain.ScoringResult{
		ID:         m.ID,
		EngineName: m.EngineName,
		EntityID:   m.EntityID,
		Score:      m.Score,
		Severity:   domain.Severity(m.Severity),
		Timestamp:  m.Timestamp,
	}
	if m.Details != "" {
		if err := json.Unmarshal([]byte(m.Details), &r.Details); err != nil {
			return domain.ScoringResult{}, err
		}
	}
	if m.Metrics != "" {
		if err := json.Unmarshal([]byte(m.Metrics), &r.Metrics); err != nil {
			return domain.ScoringResult{}, err
		}
	}
	if m.Recommendations != "" {
		if err := json.Unmarshal([]byte(m.Recommendations), &r.Recommendations); err != nil {
			return domain.ScoringResult{}, err
		}
	}
	return r, nil
}
