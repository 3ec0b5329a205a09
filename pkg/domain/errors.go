package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ConfigurationError reports an invalid control tree: duplicate ids, bad
// action/target wiring, missing required props. It is fatal and detected at
// tree construction or first use.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// DispatchError reports a violation of the dispatch protocol, such as
// Handle being invoked without a prior successful CanHandle decision, or a
// second initiative act in one turn. It is a defensive fatal error.
type DispatchError struct {
	ControlID string
	Reason    string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch error on control %q: %s", e.ControlID, e.Reason)
}

// UnhandledActError reports that a render path was given an act type it
// does not recognize. Fatal: it names the act and control so the
// misconfiguration is findable.
type UnhandledActError struct {
	ControlID string
	Act       string
}

func (e *UnhandledActError) Error() string {
	return fmt.Sprintf("control %q cannot render act %q", e.ControlID, e.Act)
}
