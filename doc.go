/*
Package espalier is a controls-based dialog management engine for building
multi-turn conversational skills.

A skill is a tree of "controls", each responsible for eliciting, validating
and confirming one piece of information. Every turn, the engine rebuilds the
tree from persisted session state and runs a deterministic two-phase
protocol: a depth-first, first-match-wins dispatch routes the normalized
input to exactly one handler, which mutates state and emits typed system
acts; if the turn then still lacks a proactive follow-up, exactly one
control takes initiative (asking to confirm, re-supply or supply a value).
The accumulated acts are rendered into prompt fragments and platform
directives by their owning controls, and the session stays open only while
some control still wants something.

# Usage

Implement a Manager that builds your control tree, then hand turns to the
engine:

	package main

	import (
		"context"
		"log"

		"github.com/mbruna/espalier"
		"github.com/mbruna/espalier/pkg/controls"
		"github.com/mbruna/espalier/pkg/domain"
	)

	type manager struct{}

	func (manager) CreateControlTree() (controls.Control, error) {
		date, err := controls.NewDateControl(controls.DateProps{
			Props: controls.Props{ID: "date", Required: true},
		})
		if err != nil {
			return nil, err
		}
		return controls.NewContainer("root", date), nil
	}

	func main() {
		eng, err := espalier.New(manager{})
		if err != nil {
			log.Fatal(err)
		}

		in := &domain.ControlInput{
			Kind:   domain.RequestIntent,
			Intent: "GeneralControlIntent",
			Slots: map[string]domain.Slot{
				domain.SlotAction: {Name: domain.SlotAction, Value: "set"},
				"date":            {Name: "date", Value: "2026-09-01"},
			},
		}
		resp, err := eng.HandleTurn(context.Background(), "session-1", in)
		if err != nil {
			log.Fatal(err)
		}
		log.Println(resp.PromptText())
	}

Inputs arrive already resolved into intents and slots; natural-language
understanding, transport envelopes and visual rendering live outside the
engine behind the interfaces in pkg/ports and pkg/domain.
*/
package espalier
