package domain

import (
	"errors"
	"fmt"
)

// ErrEngineDisabled is returned when Score is called on a disabled engine.
// Recoverable: the caller should skip the engine or re-enable it.
var ErrEngineDisabled = errors.New("engine is disabled")

// InvalidConfigError reports a bad weight, threshold or unknown field at
// Configure time. The engine keeps its prior working configuration.
type InvalidConfigError struct {
	Engine string
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config for engine %q: field %q: %s", e.Engine, e.Field, e.Reason)
}

// BaselineStoreError wraps a failure of the injected baseline store. Fatal
// to the one Score/CreateBaseline call that hit it; the drift engine never
// fabricates a baseline on store failure.
type BaselineStoreError struct {
	Op       string
	EntityID string
	Err      error
}

func (e *BaselineStoreError) Error() string {
	return fmt.Sprintf("baseline store %s failed for entity %q: %v", e.Op, e.EntityID, e.Err)
}

func (e *BaselineStoreError) Unwrap() error { return e.Err }
