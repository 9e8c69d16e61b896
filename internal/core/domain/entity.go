package domain

import (
	"math"
	"time"
)

// EntityType classifies a tracked security-relevant object.
type EntityType string

const (
	EntityDomain     EntityType = "domain"
	EntityIPAddress  EntityType = "ip_address"
	EntityHost       EntityType = "host"
	EntityService    EntityType = "service"
	EntityURL        EntityType = "url"
	EntityEmail      EntityType = "email"
	EntityPerson     EntityType = "person"
	EntityFile       EntityType = "file"
	EntityCompany    EntityType = "company"
	EntityCredential EntityType = "credential"
	EntityOther      EntityType = "other"
)

// Entity represents a tracked security-relevant object.
// Engines read entities but never mutate them.
type Entity struct {
	ID           string            `json:"id"`
	Type         EntityType        `json:"type"`
	Name         string            `json:"name"`
	DiscoveredAt time.Time         `json:"discovered_at"`
	Properties   map[string]string `json:"properties,omitempty"`
}

// ValidEntityType reports whether t is one of the enumerated entity types.
func ValidEntityType(t EntityType) bool {
	switch t {
	case EntityDomain, EntityIPAddress, EntityHost, EntityService, EntityURL,
		EntityEmail, EntityPerson, EntityFile, EntityCompany, EntityCredential, EntityOther:
		return true
	}
	return false
}

// AgeDays returns the entity age in whole days relative to now. Day
// granularity keeps age-derived scores stable across repeated calls with
// the same inputs.
func (e Entity) AgeDays(now time.Time) float64 {
	if e.DiscoveredAt.IsZero() || e.DiscoveredAt.After(now) {
		return 0
	}
	return math.Floor(now.Sub(e.DiscoveredAt).Hours() / 24)
}
