package domain

import "strings"

// Directive types understood by the rendering collaborator.
const (
	// DirectiveElicitSlot asks the platform to open the microphone for a
	// specific slot of a specific intent.
	DirectiveElicitSlot = "ElicitSlot"
	// DirectiveConfirmSlot asks the platform to run its native slot
	// confirmation flow.
	DirectiveConfirmSlot = "ConfirmSlot"
)

// Directive is a platform instruction emitted alongside prompts.
type Directive struct {
	Type    string `json:"type"`
	Slot    string `json:"slot,omitempty"`
	Intent  string `json:"intent,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Response is the finished rendering of one turn, handed to the transport
// layer.
type Response struct {
	Prompt     []string    `json:"prompt"`
	Reprompt   []string    `json:"reprompt,omitempty"`
	Directives []Directive `json:"directives,omitempty"`
	EndSession bool        `json:"end_session"`
}

// PromptText joins the prompt fragments into one utterance.
func (r *Response) PromptText() string {
	return strings.Join(r.Prompt, " ")
}

// RepromptText joins the reprompt fragments into one utterance.
func (r *Response) RepromptText() string {
	return strings.Join(r.Reprompt, " ")
}

// ResponseBuilder collects ordered prompt/reprompt fragments and directives.
// It is append-only: render paths add output, they never remove or reorder
// what earlier acts produced, and they must not touch dialog state.
type ResponseBuilder struct {
	prompt     []string
	reprompt   []string
	directives []Directive
	endSession bool
}

// NewResponseBuilder returns an empty builder.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{}
}

// AddPrompt appends a prompt fragment. Empty fragments are dropped.
func (b *ResponseBuilder) AddPrompt(fragment string) {
	if fragment != "" {
		b.prompt = append(b.prompt, fragment)
	}
}

// AddReprompt appends a reprompt fragment. Empty fragments are dropped.
func (b *ResponseBuilder) AddReprompt(fragment string) {
	if fragment != "" {
		b.reprompt = append(b.reprompt, fragment)
	}
}

// AddDirective appends a platform directive.
func (b *ResponseBuilder) AddDirective(d Directive) {
	b.directives = append(b.directives, d)
}

// SetEndSession sets the session-continuation flag.
func (b *ResponseBuilder) SetEndSession(end bool) {
	b.endSession = end
}

// Response finalizes the turn rendering.
func (b *ResponseBuilder) Response() *Response {
	return &Response{
		Prompt:     b.prompt,
		Reprompt:   b.reprompt,
		Directives: b.directives,
		EndSession: b.endSession,
	}
}
