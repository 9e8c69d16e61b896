package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lcalzada-xor/riskmap/internal/core/domain"
	"github.com/lcalzada-xor/riskmap/internal/core/ports"
	"github.com/lcalzada-xor/riskmap/internal/telemetry"
)

// criticalPropertyAdvice maps well-known critical properties to a specific
// recommendation. Unlisted critical properties get a generic one.
var criticalPropertyAdvice = map[string]string{
	"dns_servers":     "DNS servers changed; verify the change was authorized",
	"nameservers":     "Nameservers changed; verify the change was authorized",
	"ip_address":      "IP address changed; confirm the entity was not re-pointed",
	"tls_certificate": "TLS certificate changed; confirm reissue was intentional",
	"firewall_rules":  "Firewall rules changed; review the new rule set",
	"auth_method":     "Authentication method changed; confirm the change was planned",
	"service_ports":   "Service ports changed; review newly exposed services",
	"registrar":       "Registrar changed; check for domain hijacking",
}

// DriftEngine scores configuration drift against a captured baseline. It is
// a per-entity state machine with two states, NoBaseline and HasBaseline,
// backed by an injected BaselineStore.
type DriftEngine struct {
	engineState
	cfg   domain.DriftConfig
	store ports.BaselineStore
}

// NewDriftEngine returns a drift engine over the given baseline store with
// the default configuration, enabled.
func NewDriftEngine(store ports.BaselineStore) *DriftEngine {
	return &DriftEngine{
		engineState: newEngineState("drift"),
		cfg:         domain.DefaultDriftConfig(),
		store:       store,
	}
}

// ValidateConfig checks cfg without applying it.
func (e *DriftEngine) ValidateConfig(cfg domain.EngineConfig) error {
	dc, ok := cfg.(domain.DriftConfig)
	if !ok {
		return &domain.InvalidConfigError{Engine: "drift", Field: "config", Reason: fmt.Sprintf("expected DriftConfig, got %T", cfg)}
	}
	return dc.Validate()
}

// Configure validates and swaps in a new configuration.
func (e *DriftEngine) Configure(cfg domain.EngineConfig) error {
	if err := e.ValidateConfig(cfg); err != nil {
		return err
	}
	e.mu.Lock()
	e.cfg = cfg.(domain.DriftConfig)
	e.mu.Unlock()
	return nil
}

func (e *DriftEngine) snapshot() (domain.DriftConfig, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg, e.enabled
}

// CreateBaseline captures the entity's current properties and signal set
// verbatim as the new baseline. Re-baselining an entity that already has
// one is allowed and intentional: the old baseline is replaced wholesale.
func (e *DriftEngine) CreateBaseline(entity domain.Entity, sc domain.Context) error {
	props := make(map[string]string, len(entity.Properties))
	for k, v := range entity.Properties {
		props[k] = v
	}
	b := domain.Baseline{
		EntityID:   entity.ID,
		Properties: props,
		Signals:    sc.SignalsFor(entity.ID),
		CapturedAt: time.Now().UTC(),
	}
	if err := e.store.Put(entity.ID, b); err != nil {
		return &domain.BaselineStoreError{Op: "put", EntityID: entity.ID, Err: err}
	}
	telemetry.BaselineWrites.Inc()
	return nil
}

// UpdateBaseline explicitly replaces the stored baseline with current
// state. This is the only way a detected diff is "resolved"; baselines do
// not age out automatically.
func (e *DriftEngine) UpdateBaseline(entity domain.Entity, sc domain.Context) error {
	return e.CreateBaseline(entity, sc)
}

// Score diffs the entity's current state against its baseline. Without a
// baseline it returns the defined zero result, never an error.
func (e *DriftEngine) Score(ctx context.Context, entity domain.Entity, sc domain.Context) (domain.ScoringResult, error) {
	cfg, enabled := e.snapshot()
	if !enabled {
		return domain.ScoringResult{}, domain.ErrEngineDisabled
	}
	start := time.Now()
	defer e.recordRun(start)

	baseline, found, err := e.store.Get(entity.ID)
	if err != nil {
		return domain.ScoringResult{}, &domain.BaselineStoreError{Op: "get", EntityID: entity.ID, Err: err}
	}
	now := time.Now().UTC()
	signals := sc.SignalsFor(entity.ID)
	if !found {
		return newResult("drift", entity.ID, 0,
			map[string]any{"reason": "no_baseline"},
			map[string]float64{"confidence": Confidence(signals, now)},
			nil), nil
	}

	added, removed, modified := diffProperties(baseline.Properties, entity.Properties)
	propChanges := len(added) + len(removed) + len(modified)
	propScore := capAt(float64(propChanges)*cfg.PropertyChangePoints, cfg.PropertyCap)

	critical := make(map[string]bool, len(cfg.CriticalProperties))
	for _, k := range cfg.CriticalProperties {
		critical[k] = true
	}
	var criticalChanges []string
	for _, group := range [][]string{added, removed, modified} {
		for _, k := range group {
			if critical[k] {
				criticalChanges = append(criticalChanges, k)
			}
		}
	}
	sort.Strings(criticalChanges)

	sigAdds, sigRemovals, escalations, sigScore := diffSignals(baseline.Signals, signals, cfg)
	sigScore = capAt(sigScore, cfg.SignalCap)
	sigChanges := sigAdds + sigRemovals + escalations

	critMult := 1.0
	if len(criticalChanges) > 0 {
		critMult = cfg.CriticalMultiplier
	}

	// Rapid unexplained change is itself a stronger risk signal than the
	// same number of changes spread over months. Hour granularity keeps
	// the velocity stable across repeated calls with the same inputs.
	days := math.Floor(now.Sub(baseline.CapturedAt).Hours()) / 24
	if days < 1.0/24 {
		days = 1.0 / 24
	}
	velocity := float64(propChanges+sigChanges) / days
	velMult := 1.0
	if velocity > cfg.ReferenceChangesPerDay {
		bonus := (velocity/cfg.ReferenceChangesPerDay - 1) * cfg.VelocityScale
		if bonus > cfg.MaxVelocityBonus {
			bonus = cfg.MaxVelocityBonus
		}
		velMult += bonus
	}

	score := Clamp((propScore*cfg.PropertyWeight + sigScore*cfg.SignalWeight) * critMult * velMult)

	var recs []string
	seen := map[string]bool{}
	for _, k := range criticalChanges {
		if seen[k] {
			continue
		}
		seen[k] = true
		if advice, ok := criticalPropertyAdvice[k]; ok {
			recs = append(recs, advice)
		} else {
			recs = append(recs, fmt.Sprintf("Critical property %q changed; verify the change was authorized", k))
		}
	}
	if score > cfg.InvestigateThreshold {
		recs = append(recs, "Investigate unauthorized changes to this entity")
	}

	details := map[string]any{
		"properties_added":     added,
		"properties_removed":   removed,
		"properties_modified":  modified,
		"critical_changes":     criticalChanges,
		"signal_additions":     sigAdds,
		"signal_removals":      sigRemovals,
		"severity_escalations": escalations,
		"days_since_baseline":  days,
	}
	metrics := map[string]float64{
		"property_score":      propScore,
		"signal_score":        sigScore,
		"critical_multiplier": critMult,
		"velocity_multiplier": velMult,
		"change_velocity":     velocity,
		"confidence":          Confidence(signals, now),
	}

	return newResult("drift", entity.ID, score, details, metrics, recs), nil
}

// diffProperties classifies every key present in either map. Results are
// sorted for deterministic output.
func diffProperties(baseline, current map[string]string) (added, removed, modified []string) {
	added = []string{}
	removed = []string{}
	modified = []string{}
	for k, cur := range current {
		base, ok := baseline[k]
		switch {
		case !ok:
			added = append(added, k)
		case base != cur:
			modified = append(modified, k)
		}
	}
	for k := range baseline {
		if _, ok := current[k]; !ok {
			removed = append(removed, k)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(modified)
	return added, removed, modified
}

// diffSignals compares signal sets by type+entity identity and scores
// additions, removals and severity escalations.
func diffSignals(baseline, current []domain.Signal, cfg domain.DriftConfig) (adds, removals, escalations int, score float64) {
	type group struct {
		count  int
		maxSev domain.Severity
	}
	collect := func(signals []domain.Signal) map[string]group {
		groups := map[string]group{}
		for _, s := range signals {
			key := string(s.Type) + "|" + s.EntityID
			g := groups[key]
			g.count++
			if s.Severity.Rank() > g.maxSev.Rank() {
				g.maxSev = s.Severity
			}
			groups[key] = g
		}
		return groups
	}
	base := collect(baseline)
	cur := collect(current)

	keys := make([]string, 0, len(base)+len(cur))
	seen := map[string]bool{}
	for k := range cur {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range base {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		b, inBase := base[k]
		c, inCur := cur[k]
		switch {
		case inCur && !inBase:
			adds += c.count
			score += float64(c.count) * cfg.AddedSignalPoints * severityScale(cfg, c.maxSev)
		case inBase && !inCur:
			removals += b.count
			score += float64(b.count) * cfg.RemovedSignalPoints
		default:
			if c.count > b.count {
				n := c.count - b.count
				adds += n
				score += float64(n) * cfg.AddedSignalPoints * severityScale(cfg, c.maxSev)
			} else if b.count > c.count {
				n := b.count - c.count
				removals += n
				score += float64(n) * cfg.RemovedSignalPoints
			}
			if c.maxSev.Rank() > b.maxSev.Rank() {
				escalations++
				score += cfg.EscalationPoints
			}
		}
	}
	return adds, removals, escalations, score
}

func severityScale(cfg domain.DriftConfig, sev domain.Severity) float64 {
	if scale, ok := cfg.SeverityScale[sev]; ok {
		return scale
	}
	return 1
}
