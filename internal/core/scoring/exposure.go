package scoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lcalzada-xor/riskmap/internal/core/domain"
)

// exposableTypes are the network-addressable entity types the exposure
// engine can say anything about. Everything else scores 0/info before any
// signal processing.
var exposableTypes = map[domain.EntityType]bool{
	domain.EntityDomain:    true,
	domain.EntityIPAddress: true,
	domain.EntityService:   true,
	domain.EntityURL:       true,
}

// defaultPortProtocols infers a protocol from well-known port numbers when
// the signal does not name one explicitly.
var defaultPortProtocols = map[int]string{
	21: "ftp", 22: "ssh", 23: "telnet", 25: "smtp", 53: "dns",
	80: "http", 110: "pop3", 143: "imap", 443: "https", 445: "smb",
	1433: "mssql", 1521: "oracle", 3306: "mysql", 3389: "rdp",
	5432: "postgresql", 5900: "vnc", 6379: "redis", 8080: "http",
	8443: "https", 9200: "elasticsearch", 27017: "mongodb",
}

// securityHeaders are the response headers counted as security controls.
var securityHeaders = map[string]bool{
	"strict-transport-security": true,
	"content-security-policy":   true,
	"x-frame-options":           true,
	"x-content-type-options":    true,
	"referrer-policy":           true,
	"permissions-policy":        true,
}

// ExposureEngine scores the public attack surface of network-addressable
// entities: reachability, exposed services, protocol diversity and
// subdomain sprawl, reduced by detected security controls.
type ExposureEngine struct {
	engineState
	cfg domain.ExposureConfig
}

// NewExposureEngine returns an exposure engine with the default
// configuration, enabled.
func NewExposureEngine() *ExposureEngine {
	return &ExposureEngine{
		engineState: newEngineState("exposure"),
		cfg:         domain.DefaultExposureConfig(),
	}
}

// ValidateConfig checks cfg without applying it.
func (e *ExposureEngine) ValidateConfig(cfg domain.EngineConfig) error {
	ec, ok := cfg.(domain.ExposureConfig)
	if !ok {
		return &domain.InvalidConfigError{Engine: "exposure", Field: "config", Reason: fmt.Sprintf("expected ExposureConfig, got %T", cfg)}
	}
	return ec.Validate()
}

// Configure validates and swaps in a new configuration.
func (e *ExposureEngine) Configure(cfg domain.EngineConfig) error {
	if err := e.ValidateConfig(cfg); err != nil {
		return err
	}
	e.mu.Lock()
	e.cfg = cfg.(domain.ExposureConfig)
	e.mu.Unlock()
	return nil
}

func (e *ExposureEngine) snapshot() (domain.ExposureConfig, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg, e.enabled
}

// Score computes the exposure score for one entity.
func (e *ExposureEngine) Score(ctx context.Context, entity domain.Entity, sc domain.Context) (domain.ScoringResult, error) {
	cfg, enabled := e.snapshot()
	if !enabled {
		return domain.ScoringResult{}, domain.ErrEngineDisabled
	}
	start := time.Now()
	defer e.recordRun(start)

	if !exposableTypes[entity.Type] {
		return notApplicable("exposure", entity.ID, "not_exposable"), nil
	}

	signals := sc.SignalsFor(entity.ID)
	now := time.Now().UTC()
	parts := partitionByType(signals)

	bucketOf := make(map[int]string)
	for bucket, ports := range cfg.PortBuckets {
		for _, p := range ports {
			bucketOf[p] = bucket
		}
	}

	// Service exposure: bucketed fixed points per open port, capped so a
	// pile of low-value ports cannot out-weigh one critical one.
	var serviceScore float64
	var openPorts []int
	bucketCounts := map[string]int{}
	for _, s := range parts[domain.SignalOpenPort] {
		port, ok := s.Port()
		if !ok {
			continue // invalid port payloads are ignored, not errors
		}
		openPorts = append(openPorts, port)
		bucket := bucketOf[port]
		if bucket == "" {
			bucket = "low"
		}
		bucketCounts[bucket]++
		serviceScore += cfg.BucketPoints[bucket]
	}
	serviceScore = capAt(serviceScore, cfg.ServiceCap)

	// Public accessibility: DNS resolvability, HTTP reachability and open
	// ports are each evidence the entity is reachable from the outside.
	var publicScore float64
	if len(parts[domain.SignalDNSRecord]) > 0 {
		publicScore += cfg.DNSReachPoints
	}
	if len(parts[domain.SignalHTTPHeader]) > 0 {
		publicScore += cfg.HTTPReachPoints
	}
	if len(openPorts) > 0 {
		publicScore += cfg.OpenPortReachPoints
	}
	publicScore = capAt(publicScore, cfg.PublicAccessCap)

	// Protocol diversity: one point bundle per distinct protocol.
	protocols := map[string]bool{}
	for _, s := range signals {
		if proto, ok := s.DataString("protocol"); ok && proto != "" {
			protocols[strings.ToLower(proto)] = true
			continue
		}
		if s.Type == domain.SignalOpenPort {
			if port, ok := s.Port(); ok {
				if proto, known := defaultPortProtocols[port]; known {
					protocols[proto] = true
				}
			}
		}
	}
	protocolScore := capAt(float64(len(protocols))*cfg.ProtocolPoints, cfg.ProtocolCap)

	// Subdomain sprawl: linear in distinct subdomains, capped.
	subdomains := map[string]bool{}
	for _, s := range parts[domain.SignalDNSRecord] {
		if sub, ok := s.DataString("subdomain"); ok && sub != "" {
			subdomains[strings.ToLower(sub)] = true
		}
	}
	subdomainScore := capAt(float64(len(subdomains))*cfg.SubdomainPoints, cfg.SubdomainCap)

	weighted := publicScore*cfg.PublicAccessWeight +
		serviceScore*cfg.ServiceWeight +
		protocolScore*cfg.ProtocolWeight +
		subdomainScore*cfg.SubdomainWeight

	// Security controls reduce exposure sequentially, floored so they can
	// never zero out an otherwise-real surface.
	multiplier := 1.0
	wafDetected := hasControl(entity, signals, "waf")
	cdnDetected := hasControl(entity, signals, "cdn")
	if wafDetected {
		multiplier *= cfg.WAFMultiplier
	}
	if cdnDetected {
		multiplier *= cfg.CDNMultiplier
	}
	headerCount := countSecurityHeaders(parts[domain.SignalHTTPHeader])
	multiplier *= 1 - float64(headerCount)*cfg.HeaderReduction
	if multiplier < cfg.MinMultiplier {
		multiplier = cfg.MinMultiplier
	}

	score := Clamp(weighted * multiplier)

	var recs []string
	if bucketCounts["critical"] > 0 {
		recs = append(recs, "Remove database and remote-administration services from the public surface")
	}
	if len(openPorts) > 0 && !wafDetected {
		recs = append(recs, "Place exposed services behind a WAF or access gateway")
	}
	if headerCount < len(securityHeaders) && len(parts[domain.SignalHTTPHeader]) > 0 {
		recs = append(recs, "Add missing security response headers (HSTS, CSP, X-Frame-Options)")
	}
	if len(subdomains) > 5 {
		recs = append(recs, "Audit subdomains and retire unused DNS records")
	}

	details := map[string]any{
		"signal_count":     len(signals),
		"open_ports":       len(openPorts),
		"port_buckets":     bucketCounts,
		"protocols":        len(protocols),
		"subdomains":       len(subdomains),
		"waf_detected":     wafDetected,
		"cdn_detected":     cdnDetected,
		"security_headers": headerCount,
	}
	metrics := map[string]float64{
		"public_access_score": publicScore,
		"service_score":       serviceScore,
		"protocol_score":      protocolScore,
		"subdomain_score":     subdomainScore,
		"weighted_score":      weighted,
		"control_multiplier":  multiplier,
		"confidence":          Confidence(signals, now),
	}

	return newResult("exposure", entity.ID, score, details, metrics, recs), nil
}

// hasControl reports whether a security control (waf, cdn) is detected via
// an entity property or a boolean field in any signal payload.
func hasControl(entity domain.Entity, signals []domain.Signal, name string) bool {
	if entity.Properties[name] == "true" {
		return true
	}
	for _, s := range signals {
		if v, ok := s.Data[name]; ok {
			if b, ok := v.(bool); ok && b {
				return true
			}
		}
	}
	return false
}

// countSecurityHeaders counts distinct recognized security headers among
// http_header signals.
func countSecurityHeaders(headers []domain.Signal) int {
	seen := map[string]bool{}
	for _, s := range headers {
		name, ok := s.DataString("name")
		if !ok {
			name, _ = s.DataString("header")
		}
		name = strings.ToLower(name)
		if securityHeaders[name] {
			seen[name] = true
		}
	}
	return len(seen)
}
