// Package conversation implements the chat side of quoting: a step-by-step
// quote state machine, freeform request detection, greeting handling, FAQ
// matching with branch follow-ups, and the legacy single-location price
// answers. It owns the session stores; callers hand it one message at a time.
package conversation

import "github.com/jkindrix/shopquote/internal/domain"

// Option is one quick-reply button.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// State tells the client which step the quote flow is on, so the UI can
// adjust input affordances.
type State struct {
	Step domain.Step `json:"step"`
}

// QuoteLocation is the wire shape of a priced placement.
type QuoteLocation struct {
	Location string `json:"location"`
	Colors   int    `json:"colors"`
}

// QuotePayload rides along with a computed quote so the client can request a
// PDF of the same numbers.
type QuotePayload struct {
	Quantity  int             `json:"quantity"`
	Locations []QuoteLocation `json:"locations"`
	Tier      string          `json:"tier,omitempty"`
}

// Response is one chat turn from the bot. Reply and Answer always carry the
// same text; both names are kept because deployed clients read either.
type Response struct {
	Type    string        `json:"type"`
	Reply   string        `json:"reply"`
	Answer  string        `json:"answer"`
	Prompt  string        `json:"prompt,omitempty"`
	Options []Option      `json:"options,omitempty"`
	State   *State        `json:"state,omitempty"`
	Quote   *QuotePayload `json:"quote,omitempty"`
}

func answer(msg string) *Response {
	return &Response{Type: "answer", Reply: msg, Answer: msg}
}

func branch(msg string, options []Option) *Response {
	return &Response{
		Type:    "branch",
		Prompt:  msg,
		Options: options,
		Reply:   msg,
		Answer:  msg,
	}
}

func (r *Response) withState(step domain.Step) *Response {
	r.State = &State{Step: step}
	return r
}
