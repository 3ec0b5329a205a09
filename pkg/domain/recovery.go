package domain

import "context"

// RecoveryStrategy selects how the turn engine converts an error thrown by
// a control into a user-visible outcome.
type RecoveryStrategy int

const (
	// RecoverFallback renders a generic fallback utterance and ends the
	// session. This is the default.
	RecoverFallback RecoveryStrategy = iota

	// RecoverPropagate returns the error to the caller unchanged.
	RecoverPropagate

	// RecoverNoMatch treats an error during the CanHandle phase as "no
	// match", letting a higher fallback claim the turn. It is not legal once
	// the input is claimed: during Handle or TakeInitiative it degrades to
	// RecoverFallback.
	RecoverNoMatch
)

// RecoveryHook renders a custom response for a failed turn. The hook must
// produce output and explicitly set the session-continuation flag on the
// builder; nothing else will.
type RecoveryHook func(ctx context.Context, turnErr error, in *ControlInput, rb *ResponseBuilder)

// DefaultFallbackPrompt is the generic failure utterance used when no hook
// overrides it.
const DefaultFallbackPrompt = "Sorry, something went wrong. Please try again later."

// RecoveryPolicy configures error containment for the turn engine. A
// configured Hook takes precedence over Strategy for fatal errors.
type RecoveryPolicy struct {
	Strategy       RecoveryStrategy
	Hook           RecoveryHook
	FallbackPrompt string
}

// Fallback returns the configured fallback prompt or the default.
func (p RecoveryPolicy) Fallback() string {
	if p.FallbackPrompt != "" {
		return p.FallbackPrompt
	}
	return DefaultFallbackPrompt
}
