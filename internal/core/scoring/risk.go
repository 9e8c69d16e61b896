package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/lcalzada-xor/riskmap/internal/core/domain"
)

// RiskEngine scores entities on the evidence of compromise and weakness:
// known vulnerabilities, open ports, leaked credentials, and malware or
// suspicious-activity sightings, with a severity multiplier and linear age
// decay on top of the weighted factor sum.
type RiskEngine struct {
	engineState
	cfg domain.RiskConfig
}

// NewRiskEngine returns a risk engine with the default configuration,
// enabled.
func NewRiskEngine() *RiskEngine {
	return &RiskEngine{
		engineState: newEngineState("risk"),
		cfg:         domain.DefaultRiskConfig(),
	}
}

// ValidateConfig checks cfg without applying it.
func (e *RiskEngine) ValidateConfig(cfg domain.EngineConfig) error {
	rc, ok := cfg.(domain.RiskConfig)
	if !ok {
		return &domain.InvalidConfigError{Engine: "risk", Field: "config", Reason: fmt.Sprintf("expected RiskConfig, got %T", cfg)}
	}
	return rc.Validate()
}

// Configure validates and swaps in a new configuration. The prior working
// configuration is kept on failure.
func (e *RiskEngine) Configure(cfg domain.EngineConfig) error {
	if err := e.ValidateConfig(cfg); err != nil {
		return err
	}
	e.mu.Lock()
	e.cfg = cfg.(domain.RiskConfig)
	e.mu.Unlock()
	return nil
}

func (e *RiskEngine) snapshot() (domain.RiskConfig, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg, e.enabled
}

// Score computes the risk score for one entity.
func (e *RiskEngine) Score(ctx context.Context, entity domain.Entity, sc domain.Context) (domain.ScoringResult, error) {
	cfg, enabled := e.snapshot()
	if !enabled {
		return domain.ScoringResult{}, domain.ErrEngineDisabled
	}
	start := time.Now()
	defer e.recordRun(start)

	if !domain.ValidEntityType(entity.Type) {
		return notApplicable("risk", entity.ID, "not_scorable"), nil
	}

	signals := sc.SignalsFor(entity.ID)
	now := time.Now().UTC()
	if len(signals) == 0 {
		return newResult("risk", entity.ID, 0,
			map[string]any{"signal_count": 0},
			map[string]float64{"confidence": Confidence(nil, now)},
			nil), nil
	}

	parts := partitionByType(signals)

	vulnCount := len(parts[domain.SignalVulnerability])
	vulnScore := capAt(float64(vulnCount)*cfg.VulnerabilityPoints, cfg.FactorCap)

	critical := make(map[int]bool, len(cfg.CriticalPorts))
	for _, p := range cfg.CriticalPorts {
		critical[p] = true
	}
	var portScore float64
	var portCount, criticalPortCount int
	for _, s := range parts[domain.SignalOpenPort] {
		port, ok := s.Port()
		if !ok {
			continue // malformed port payloads are skipped, never fatal
		}
		portCount++
		if critical[port] {
			criticalPortCount++
			portScore += cfg.CriticalPortPoints
		} else {
			portScore += cfg.PortPoints
		}
	}
	portScore = capAt(portScore, cfg.FactorCap)

	// A single leaked credential is already severe: a large base increment
	// plus a small per-signal scale, rather than pure count scaling.
	credCount := len(parts[domain.SignalCredentialExposure])
	var credScore float64
	if credCount > 0 {
		credScore = capAt(cfg.CredentialBasePoints+float64(credCount)*cfg.CredentialPoints, cfg.FactorCap)
	}

	malwareCount := len(parts[domain.SignalMalware])
	suspiciousCount := len(parts[domain.SignalSuspiciousActivity])
	activityScore := capAt(float64(malwareCount)*cfg.MalwarePoints+float64(suspiciousCount)*cfg.SuspiciousPoints, cfg.FactorCap)

	weighted := vulnScore*cfg.VulnerabilityWeight +
		portScore*cfg.PortWeight +
		credScore*cfg.CredentialWeight +
		activityScore*cfg.ActivityWeight

	sevMult := 1.0
	for _, s := range signals {
		sevMult += cfg.SeverityBonus[s.Severity]
	}
	if sevMult > cfg.MaxSeverityMultiplier {
		sevMult = cfg.MaxSeverityMultiplier
	}

	decay := 1 - entity.AgeDays(now)*cfg.DecayRatePerDay
	if decay < 0 {
		decay = 0
	}

	score := Clamp(weighted * sevMult * decay)

	recs := riskRecommendations(credCount, vulnCount, criticalPortCount, portCount, malwareCount, suspiciousCount)

	details := map[string]any{
		"signal_count":         len(signals),
		"vulnerabilities":      vulnCount,
		"open_ports":           portCount,
		"critical_open_ports":  criticalPortCount,
		"credential_exposures": credCount,
		"malware":              malwareCount,
		"suspicious_activity":  suspiciousCount,
	}
	metrics := map[string]float64{
		"vulnerability_score": vulnScore,
		"port_score":          portScore,
		"credential_score":    credScore,
		"activity_score":      activityScore,
		"weighted_score":      weighted,
		"severity_multiplier": sevMult,
		"age_decay":           decay,
		"confidence":          Confidence(signals, now),
	}

	return newResult("risk", entity.ID, score, details, metrics, recs), nil
}

// riskRecommendations orders actions by factor dominance. Credential
// exposure always leads: a leaked credential is actionable today.
func riskRecommendations(creds, vulns, criticalPorts, ports, malware, suspicious int) []string {
	var recs []string
	if creds > 0 {
		recs = append(recs, "Reset exposed credentials immediately and rotate any shared secrets")
	}
	if vulns > 0 {
		recs = append(recs, fmt.Sprintf("Patch the %d known vulnerabilities, prioritizing critical findings", vulns))
	}
	if criticalPorts > 0 {
		recs = append(recs, "Close or firewall exposed database and remote-administration ports")
	}
	if ports > criticalPorts {
		recs = append(recs, "Review remaining open ports and disable unneeded services")
	}
	if malware > 0 {
		recs = append(recs, "Isolate affected hosts and run malware remediation")
	}
	if suspicious > 0 {
		recs = append(recs, "Investigate the flagged suspicious activity")
	}
	return recs
}
