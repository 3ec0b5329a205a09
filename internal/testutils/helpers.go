// Package testutils provides input builders shared by tests across
// packages.
package testutils

import (
	"github.com/mbruna/espalier/pkg/domain"
)

// LaunchInput builds a launch request.
func LaunchInput() *domain.ControlInput {
	return &domain.ControlInput{Kind: domain.RequestLaunch}
}

// IntentInput builds an intent request carrying the given slots.
func IntentInput(intent string, slots ...domain.Slot) *domain.ControlInput {
	in := &domain.ControlInput{Kind: domain.RequestIntent, Intent: intent}
	if len(slots) > 0 {
		in.Slots = make(map[string]domain.Slot, len(slots))
		for _, s := range slots {
			in.Slots[s.Name] = s
		}
	}
	return in
}

// SlotValue builds a free-form slot value.
func SlotValue(name, value string) domain.Slot {
	return domain.Slot{Name: name, Value: value}
}

// ER builds an entity-resolved slot value.
func ER(name, value string) domain.Slot {
	return domain.Slot{Name: name, Value: value, ERMatch: true}
}

// Action builds the action slot.
func Action(value string) domain.Slot {
	return domain.Slot{Name: domain.SlotAction, Value: value}
}

// Target builds the target slot.
func Target(value string) domain.Slot {
	return domain.Slot{Name: domain.SlotTarget, Value: value}
}

// Feedback builds the feedback slot.
func Feedback(value string) domain.Slot {
	return domain.Slot{Name: domain.SlotFeedback, Value: value}
}
