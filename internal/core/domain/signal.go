package domain

import (
	"strconv"
	"time"
)

// SignalType classifies a piece of evidence about an entity.
type SignalType string

const (
	SignalVulnerability      SignalType = "vulnerability"
	SignalOpenPort           SignalType = "open_port"
	SignalCredentialExposure SignalType = "credential_exposure"
	SignalMalware            SignalType = "malware"
	SignalSuspiciousActivity SignalType = "suspicious_activity"
	SignalDataBreach         SignalType = "data_breach"
	SignalDomainRegistration SignalType = "domain_registration"
	SignalCertificate        SignalType = "certificate"
	SignalHTTPHeader         SignalType = "http_header"
	SignalDNSRecord          SignalType = "dns_record"
	SignalOther              SignalType = "other"
)

// Signal is a discrete piece of evidence about an entity. Signals are
// read-only; the shape of Data depends on Type (e.g. {"port": 443} for
// open_port signals).
type Signal struct {
	ID        string         `json:"id,omitempty"`
	Type      SignalType     `json:"type"`
	Severity  Severity       `json:"severity"`
	EntityID  string         `json:"entity_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Context is the unit of scoring work: a set of entities plus all signals
// relevant to them.
type Context struct {
	Entities []Entity `json:"entities"`
	Signals  []Signal `json:"signals"`
}

// SignalsFor returns the signals scoped to the given entity: those whose
// EntityID matches, plus entity-less global signals.
func (c Context) SignalsFor(entityID string) []Signal {
	var out []Signal
	for _, s := range c.Signals {
		if s.EntityID == entityID || s.EntityID == "" {
			out = append(out, s)
		}
	}
	return out
}

// Port extracts a port number from the signal's Data payload. The second
// return value is false when the payload is missing, malformed, or out of
// the valid port range; such signals are skipped, never an error.
func (s Signal) Port() (int, bool) {
	v, ok := s.Data["port"]
	if !ok {
		return 0, false
	}
	var port int
	switch n := v.(type) {
	case int:
		port = n
	case int64:
		port = int(n)
	case float64:
		port = int(n)
	case string:
		p, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		port = p
	default:
		return 0, false
	}
	if port < 1 || port > 65535 {
		return 0, false
	}
	return port, true
}

// DataString returns a string field from the signal payload, if present.
func (s Signal) DataString(key string) (string, bool) {
	v, ok := s.Data[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}
