package runner

import (
	"strings"

	"github.com/mbruna/espalier/pkg/domain"
)

// Parser is a deterministic toy grammar that maps terminal utterances to
// normalized control inputs. It stands in for the NLU a voice platform
// would run upstream; production hosts post ControlInput directly.
//
// Recognized forms:
//
//	yes / no                      affirmation intents
//	set <slot> [to] <value>       explicit set
//	change <slot> to <value>      explicit change
//	change <slot>                 change without a value
//	<slot> is <value>             explicit set
//	<value>                       bare value
//
// A bare value is ambiguous, so it is offered under every known slot; the
// control tree resolves the ambiguity through its open elicitation.
type Parser struct {
	// Slots are the value-bearing slot names the grammar knows about.
	Slots []string
}

// NewParser creates a parser for the given slot names.
func NewParser(slots ...string) *Parser {
	return &Parser{Slots: slots}
}

var affirmWords = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "sure": true, "correct": true,
}

var denyWords = map[string]bool{
	"no": true, "nope": true, "nah": true, "wrong": true,
}

var setWords = map[string]bool{
	"set": true, "select": true, "choose": true, "pick": true,
}

var changeWords = map[string]bool{
	"change": true, "update": true,
}

// Parse maps an utterance to a control input. It returns nil for input the
// grammar cannot interpret.
func (p *Parser) Parse(text string) *domain.ControlInput {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}

	if affirmWords[text] {
		return &domain.ControlInput{Kind: domain.RequestIntent, Intent: domain.IntentAffirm}
	}
	if denyWords[text] {
		return &domain.ControlInput{Kind: domain.RequestIntent, Intent: domain.IntentDeny}
	}

	tokens := strings.Fields(text)

	// "set <slot> [to] <value>" / "change <slot> to <value>" / "change <slot>"
	if len(tokens) >= 2 && (setWords[tokens[0]] || changeWords[tokens[0]]) && p.knownSlot(tokens[1]) {
		action := domain.ActionSet
		if changeWords[tokens[0]] {
			action = domain.ActionChange
		}
		rest := tokens[2:]
		if len(rest) > 0 && rest[0] == "to" {
			rest = rest[1:]
		}
		in := &domain.ControlInput{
			Kind: domain.RequestIntent,
			Slots: map[string]domain.Slot{
				domain.SlotAction: {Name: domain.SlotAction, Value: action},
				domain.SlotTarget: {Name: domain.SlotTarget, Value: tokens[1]},
			},
		}
		if len(rest) > 0 {
			value := strings.Join(rest, " ")
			in.Slots[tokens[1]] = domain.Slot{Name: tokens[1], Value: value}
		}
		return in
	}

	// "<slot> is <value>"
	if len(tokens) >= 3 && p.knownSlot(tokens[0]) && tokens[1] == "is" {
		value := strings.Join(tokens[2:], " ")
		return &domain.ControlInput{
			Kind: domain.RequestIntent,
			Slots: map[string]domain.Slot{
				domain.SlotAction: {Name: domain.SlotAction, Value: domain.ActionSet},
				domain.SlotTarget: {Name: domain.SlotTarget, Value: tokens[0]},
				tokens[0]:         {Name: tokens[0], Value: value},
			},
		}
	}

	// Bare value: offer it under every slot and let the open elicitation
	// decide which control claims it.
	slots := make(map[string]domain.Slot, len(p.Slots))
	for _, name := range p.Slots {
		slots[name] = domain.Slot{Name: name, Value: text}
	}
	return &domain.ControlInput{Kind: domain.RequestIntent, Slots: slots, Raw: text}
}

func (p *Parser) knownSlot(name string) bool {
	for _, s := range p.Slots {
		if s == name {
			return true
		}
	}
	return false
}
