package domain

import "fmt"

// EngineConfig is implemented by every per-engine configuration struct.
// Configure is the only path for a config to take effect; Score never
// mutates it.
type EngineConfig interface {
	Validate() error
}

// EngineWeight pairs an engine name with its contribution to a composite
// score. Weights are applied literally; the manager does not renormalize.
type EngineWeight struct {
	Engine string  `yaml:"engine" json:"engine"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// RiskConfig tunes the risk engine. All weights and point values must be
// non-negative; out-of-range values fail validation instead of clamping.
type RiskConfig struct {
	// Factor weights. The engine does not renormalize: if they do not sum
	// to 1.0 the result scales accordingly. Documented behavior.
	VulnerabilityWeight float64 `yaml:"vulnerability_weight" json:"vulnerability_weight"`
	PortWeight          float64 `yaml:"port_weight" json:"port_weight"`
	CredentialWeight    float64 `yaml:"credential_weight" json:"credential_weight"`
	ActivityWeight      float64 `yaml:"activity_weight" json:"activity_weight"`

	VulnerabilityPoints  float64 `yaml:"vulnerability_points" json:"vulnerability_points"`
	PortPoints           float64 `yaml:"port_points" json:"port_points"`
	CriticalPortPoints   float64 `yaml:"critical_port_points" json:"critical_port_points"`
	CriticalPorts        []int   `yaml:"critical_ports" json:"critical_ports"`
	CredentialBasePoints float64 `yaml:"credential_base_points" json:"credential_base_points"`
	CredentialPoints     float64 `yaml:"credential_points" json:"credential_points"`
	MalwarePoints        float64 `yaml:"malware_points" json:"malware_points"`
	SuspiciousPoints     float64 `yaml:"suspicious_points" json:"suspicious_points"`
	FactorCap            float64 `yaml:"factor_cap" json:"factor_cap"`

	SeverityBonus         map[Severity]float64 `yaml:"severity_bonus" json:"severity_bonus"`
	MaxSeverityMultiplier float64              `yaml:"max_severity_multiplier" json:"max_severity_multiplier"`

	// DecayRatePerDay linearly decays the score with entity age. The
	// default 0.001 is 0.1%/day.
	DecayRatePerDay float64 `yaml:"decay_rate_per_day" json:"decay_rate_per_day"`
}

// DefaultRiskConfig returns the documented default risk tuning.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		VulnerabilityWeight:  0.35,
		PortWeight:           0.15,
		CredentialWeight:     0.30,
		ActivityWeight:       0.20,
		VulnerabilityPoints:  10,
		PortPoints:           5,
		CriticalPortPoints:   10,
		CriticalPorts:        []int{1433, 1521, 3306, 3389, 5432, 5984, 6379, 9200, 27017, 23, 445},
		CredentialBasePoints: 40,
		CredentialPoints:     5,
		MalwarePoints:        15,
		SuspiciousPoints:     10,
		FactorCap:            100,
		SeverityBonus: map[Severity]float64{
			SeverityCritical: 0.05,
			SeverityHigh:     0.02,
			SeverityMedium:   0.01,
			SeverityLow:      0.005,
			SeverityInfo:     0,
		},
		MaxSeverityMultiplier: 2.5,
		DecayRatePerDay:       0.001,
	}
}

func (c RiskConfig) Validate() error {
	fields := map[string]float64{
		"vulnerability_weight":   c.VulnerabilityWeight,
		"port_weight":            c.PortWeight,
		"credential_weight":      c.CredentialWeight,
		"activity_weight":        c.ActivityWeight,
		"vulnerability_points":   c.VulnerabilityPoints,
		"port_points":            c.PortPoints,
		"critical_port_points":   c.CriticalPortPoints,
		"credential_base_points": c.CredentialBasePoints,
		"credential_points":      c.CredentialPoints,
		"malware_points":         c.MalwarePoints,
		"suspicious_points":      c.SuspiciousPoints,
	}
	for name, v := range fields {
		if v < 0 {
			return &InvalidConfigError{Engine: "risk", Field: name, Reason: "must be non-negative"}
		}
	}
	if c.FactorCap <= 0 {
		return &InvalidConfigError{Engine: "risk", Field: "factor_cap", Reason: "must be positive"}
	}
	if c.MaxSeverityMultiplier < 1 {
		return &InvalidConfigError{Engine: "risk", Field: "max_severity_multiplier", Reason: "must be at least 1"}
	}
	if c.DecayRatePerDay < 0 || c.DecayRatePerDay > 1 {
		return &InvalidConfigError{Engine: "risk", Field: "decay_rate_per_day", Reason: "must be in [0,1]"}
	}
	for sev, bonus := range c.SeverityBonus {
		if !validSeverity(sev) {
			return &InvalidConfigError{Engine: "risk", Field: "severity_bonus", Reason: fmt.Sprintf("unknown severity %q", sev)}
		}
		if bonus < 0 {
			return &InvalidConfigError{Engine: "risk", Field: "severity_bonus", Reason: "bonus must be non-negative"}
		}
	}
	for _, p := range c.CriticalPorts {
		if p < 1 || p > 65535 {
			return &InvalidConfigError{Engine: "risk", Field: "critical_ports", Reason: fmt.Sprintf("port %d out of range", p)}
		}
	}
	return nil
}

// ExposureConfig tunes the exposure engine.
type ExposureConfig struct {
	// Factor weights, applied literally. The defaults intentionally sum
	// above 1.0: exposure factors compound, and the engine clamps the
	// combined score rather than renormalizing.
	PublicAccessWeight float64 `yaml:"public_access_weight" json:"public_access_weight"`
	ServiceWeight      float64 `yaml:"service_weight" json:"service_weight"`
	ProtocolWeight     float64 `yaml:"protocol_weight" json:"protocol_weight"`
	SubdomainWeight    float64 `yaml:"subdomain_weight" json:"subdomain_weight"`

	// PortBuckets maps bucket names (critical/high/medium) to port lists.
	// Ports not listed fall into the low bucket.
	PortBuckets  map[string][]int   `yaml:"port_buckets" json:"port_buckets"`
	BucketPoints map[string]float64 `yaml:"bucket_points" json:"bucket_points"`
	ServiceCap   float64            `yaml:"service_cap" json:"service_cap"`

	ProtocolPoints float64 `yaml:"protocol_points" json:"protocol_points"`
	ProtocolCap    float64 `yaml:"protocol_cap" json:"protocol_cap"`

	SubdomainPoints float64 `yaml:"subdomain_points" json:"subdomain_points"`
	SubdomainCap    float64 `yaml:"subdomain_cap" json:"subdomain_cap"`

	DNSReachPoints      float64 `yaml:"dns_reach_points" json:"dns_reach_points"`
	HTTPReachPoints     float64 `yaml:"http_reach_points" json:"http_reach_points"`
	OpenPortReachPoints float64 `yaml:"open_port_reach_points" json:"open_port_reach_points"`
	PublicAccessCap     float64 `yaml:"public_access_cap" json:"public_access_cap"`

	// Security-control multipliers, applied sequentially, floored at
	// MinMultiplier so controls reduce but never zero out real exposure.
	WAFMultiplier   float64 `yaml:"waf_multiplier" json:"waf_multiplier"`
	CDNMultiplier   float64 `yaml:"cdn_multiplier" json:"cdn_multiplier"`
	HeaderReduction float64 `yaml:"header_reduction" json:"header_reduction"`
	MinMultiplier   float64 `yaml:"min_multiplier" json:"min_multiplier"`
}

// DefaultExposureConfig returns the documented default exposure tuning.
func DefaultExposureConfig() ExposureConfig {
	return ExposureConfig{
		PublicAccessWeight: 0.5,
		ServiceWeight:      0.8,
		ProtocolWeight:     0.4,
		SubdomainWeight:    0.3,
		PortBuckets: map[string][]int{
			"critical": {23, 445, 1433, 3306, 3389, 5432, 6379, 9200, 27017},
			"high":     {21, 22, 25, 110, 135, 139, 143, 5900},
			"medium":   {53, 80, 123, 8080, 8443},
		},
		BucketPoints: map[string]float64{
			"critical": 30,
			"high":     18,
			"medium":   8,
			"low":      3,
		},
		ServiceCap:          100,
		ProtocolPoints:      8,
		ProtocolCap:         40,
		SubdomainPoints:     5,
		SubdomainCap:        40,
		DNSReachPoints:      25,
		HTTPReachPoints:     35,
		OpenPortReachPoints: 40,
		PublicAccessCap:     100,
		WAFMultiplier:       0.8,
		CDNMultiplier:       0.9,
		HeaderReduction:     0.02,
		MinMultiplier:       0.5,
	}
}

func (c ExposureConfig) Validate() error {
	fields := map[string]float64{
		"public_access_weight":   c.PublicAccessWeight,
		"service_weight":         c.ServiceWeight,
		"protocol_weight":        c.ProtocolWeight,
		"subdomain_weight":       c.SubdomainWeight,
		"protocol_points":        c.ProtocolPoints,
		"subdomain_points":       c.SubdomainPoints,
		"dns_reach_points":       c.DNSReachPoints,
		"http_reach_points":      c.HTTPReachPoints,
		"open_port_reach_points": c.OpenPortReachPoints,
		"header_reduction":       c.HeaderReduction,
	}
	for name, v := range fields {
		if v < 0 {
			return &InvalidConfigError{Engine: "exposure", Field: name, Reason: "must be non-negative"}
		}
	}
	caps := map[string]float64{
		"service_cap":       c.ServiceCap,
		"protocol_cap":      c.ProtocolCap,
		"subdomain_cap":     c.SubdomainCap,
		"public_access_cap": c.PublicAccessCap,
	}
	for name, v := range caps {
		if v <= 0 {
			return &InvalidConfigError{Engine: "exposure", Field: name, Reason: "must be positive"}
		}
	}
	for bucket := range c.PortBuckets {
		if bucket != "critical" && bucket != "high" && bucket != "medium" {
			return &InvalidConfigError{Engine: "exposure", Field: "port_buckets", Reason: fmt.Sprintf("unknown bucket %q", bucket)}
		}
		for _, p := range c.PortBuckets[bucket] {
			if p < 1 || p > 65535 {
				return &InvalidConfigError{Engine: "exposure", Field: "port_buckets", Reason: fmt.Sprintf("port %d out of range", p)}
			}
		}
	}
	for bucket, pts := range c.BucketPoints {
		switch bucket {
		case "critical", "high", "medium", "low":
		default:
			return &InvalidConfigError{Engine: "exposure", Field: "bucket_points", Reason: fmt.Sprintf("unknown bucket %q", bucket)}
		}
		if pts < 0 {
			return &InvalidConfigError{Engine: "exposure", Field: "bucket_points", Reason: "points must be non-negative"}
		}
	}
	for name, m := range map[string]float64{"waf_multiplier": c.WAFMultiplier, "cdn_multiplier": c.CDNMultiplier} {
		if m <= 0 || m > 1 {
			return &InvalidConfigError{Engine: "exposure", Field: name, Reason: "must be in (0,1]"}
		}
	}
	if c.MinMultiplier <= 0 || c.MinMultiplier > 1 {
		return &InvalidConfigError{Engine: "exposure", Field: "min_multiplier", Reason: "must be in (0,1]"}
	}
	return nil
}

// DriftConfig tunes the drift engine.
type DriftConfig struct {
	PropertyWeight float64 `yaml:"property_weight" json:"property_weight"`
	SignalWeight   float64 `yaml:"signal_weight" json:"signal_weight"`

	PropertyChangePoints float64 `yaml:"property_change_points" json:"property_change_points"`
	PropertyCap          float64 `yaml:"property_cap" json:"property_cap"`

	AddedSignalPoints   float64 `yaml:"added_signal_points" json:"added_signal_points"`
	RemovedSignalPoints float64 `yaml:"removed_signal_points" json:"removed_signal_points"`
	EscalationPoints    float64 `yaml:"escalation_points" json:"escalation_points"`
	SignalCap           float64 `yaml:"signal_cap" json:"signal_cap"`

	// SeverityScale scales added-signal points by the highest severity of
	// the new signals for that key.
	SeverityScale map[Severity]float64 `yaml:"severity_scale" json:"severity_scale"`

	CriticalProperties []string `yaml:"critical_properties" json:"critical_properties"`
	CriticalMultiplier float64  `yaml:"critical_multiplier" json:"critical_multiplier"`

	// Velocity: changes per day above ReferenceChangesPerDay scale the
	// combined score up, capped by MaxVelocityBonus.
	ReferenceChangesPerDay float64 `yaml:"reference_changes_per_day" json:"reference_changes_per_day"`
	VelocityScale          float64 `yaml:"velocity_scale" json:"velocity_scale"`
	MaxVelocityBonus       float64 `yaml:"max_velocity_bonus" json:"max_velocity_bonus"`

	InvestigateThreshold float64 `yaml:"investigate_threshold" json:"investigate_threshold"`
}

// DefaultDriftConfig returns the documented default drift tuning.
func DefaultDriftConfig() DriftConfig {
	return DriftConfig{
		PropertyWeight:       0.3,
		SignalWeight:         0.4,
		PropertyChangePoints: 20,
		PropertyCap:          100,
		AddedSignalPoints:    25,
		RemovedSignalPoints:  10,
		EscalationPoints:     20,
		SignalCap:            100,
		SeverityScale: map[Severity]float64{
			SeverityCritical: 2.0,
			SeverityHigh:     1.5,
			SeverityMedium:   1.0,
			SeverityLow:      0.75,
			SeverityInfo:     0.5,
		},
		CriticalProperties: []string{
			"dns_servers", "nameservers", "ip_address", "tls_certificate",
			"firewall_rules", "auth_method", "service_ports", "registrar",
		},
		CriticalMultiplier:     1.3,
		ReferenceChangesPerDay: 0.5,
		VelocityScale:          0.5,
		MaxVelocityBonus:       2.0,
		InvestigateThreshold:   50,
	}
}

func (c DriftConfig) Validate() error {
	fields := map[string]float64{
		"property_weight":        c.PropertyWeight,
		"signal_weight":          c.SignalWeight,
		"property_change_points": c.PropertyChangePoints,
		"added_signal_points":    c.AddedSignalPoints,
		"removed_signal_points":  c.RemovedSignalPoints,
		"escalation_points":      c.EscalationPoints,
		"velocity_scale":         c.VelocityScale,
		"max_velocity_bonus":     c.MaxVelocityBonus,
		"investigate_threshold":  c.InvestigateThreshold,
	}
	for name, v := range fields {
		if v < 0 {
			return &InvalidConfigError{Engine: "drift", Field: name, Reason: "must be non-negative"}
		}
	}
	if c.PropertyCap <= 0 {
		return &InvalidConfigError{Engine: "drift", Field: "property_cap", Reason: "must be positive"}
	}
	if c.SignalCap <= 0 {
		return &InvalidConfigError{Engine: "drift", Field: "signal_cap", Reason: "must be positive"}
	}
	if c.CriticalMultiplier < 1 {
		return &InvalidConfigError{Engine: "drift", Field: "critical_multiplier", Reason: "must be at least 1"}
	}
	if c.ReferenceChangesPerDay <= 0 {
		return &InvalidConfigError{Engine: "drift", Field: "reference_changes_per_day", Reason: "must be positive"}
	}
	for sev, scale := range c.SeverityScale {
		if !validSeverity(sev) {
			return &InvalidConfigError{Engine: "drift", Field: "severity_scale", Reason: fmt.Sprintf("unknown severity %q", sev)}
		}
		if scale < 0 {
			return &InvalidConfigError{Engine: "drift", Field: "severity_scale", Reason: "scale must be non-negative"}
		}
	}
	return nil
}

func validSeverity(s Severity) bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}
