package build

import "fmt"

// State is one stage of a build run.
type State string

const (
	StateIdle           State = "idle"
	StateScopeSelection State = "scope_selection"
	StateScanning       State = "scanning"
	StateCascading      State = "cascading"
	StateRendering      State = "rendering"
	StateReconciling    State = "reconciling"
	StateFailed         State = "failed"
)

// isAllowedTransition validates the build state machine. Failed is reachable
// from any working stage; a completed run returns to Idle only through
// Reconciling.
func isAllowedTransition(from, to State) bool {
	if to == StateFailed {
		return from != StateIdle
	}
	switch from {
	case StateIdle:
		return to == StateScopeSelection
	case StateScopeSelection:
		return to == StateScanning
	case StateScanning:
		return to == StateCascading
	case StateCascading:
		return to == StateRendering
	case StateRendering:
		return to == StateReconciling
	case StateReconciling:
		return to == StateIdle
	case StateFailed:
		return to == StateIdle
	default:
		return false
	}
}

// transition performs a validated state change. An invalid transition is a
// programmer error surfaced loudly, not worked around.
func (o *Orchestrator) transition(to State) error {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	if !isAllowedTransition(o.state, to) {
		return fmt.Errorf("invalid build state transition: %s -> %s", o.state, to)
	}
	o.state = to
	return nil
}

// CurrentState reports the orchestrator's stage, for status endpoints.
func (o *Orchestrator) CurrentState() State {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	return o.state
}
