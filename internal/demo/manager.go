// Package demo ships the booking skill used by the CLI and the examples.
// It books an appointment by filling three slots: the service, the party
// size and the date.
package demo

import (
	"github.com/mbruna/espalier/pkg/controls"
	"github.com/mbruna/espalier/pkg/dsl"
)

// Services is the vocabulary of the service control.
var Services = []string{"haircut", "massage", "consult"}

// SlotNames lists the value-bearing slots of the skill, in tree order.
var SlotNames = []string{"service", "party_size", "date"}

// NewManager builds the booking skill's control tree manager.
func NewManager(opts ...controls.Option) *dsl.Manager {
	minSize, maxSize := 1, 8
	return dsl.New("booking", opts...).
		List(controls.ListProps{
			Props: controls.Props{
				ID:       "service",
				Required: true,
			},
			Choices: Services,
		}).
		Number(controls.NumberProps{
			Props: controls.Props{
				ID:       "party_size",
				Required: true,
			},
			Min: &minSize,
			Max: &maxSize,
		}).
		Date(controls.DateProps{
			Props: controls.Props{
				ID:           "date",
				Required:     true,
				Confirmation: true,
			},
		}).
		Build()
}
