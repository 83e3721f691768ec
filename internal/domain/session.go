package domain

import "time"

// Step identifies a state of the quote conversation.
type Step string

const (
	StepAskQty     Step = "ask_qty"
	StepSmallOrder Step = "small_order"
	StepAskLoc     Step = "ask_loc"
	StepAskColors  Step = "ask_colors"
	StepAskMore    Step = "ask_more"
	StepAskTier    Step = "ask_tier"
	StepConfirm    Step = "confirm"
)

// QuoteSession is the per-(tenant, session) conversation state. It is mutated
// exclusively by the conversation state machine and never persisted.
type QuoteSession struct {
	CreatedAt time.Time
	Step      Step
	Quantity  int
	Locations []PrintLocation
	Tier      string

	// Pending is a location awaiting its color count (ask_colors state).
	Pending string
}

// NewQuoteSession returns a fresh session at the quantity step.
func NewQuoteSession(now time.Time) *QuoteSession {
	return &QuoteSession{
		CreatedAt: now,
		Step:      StepAskQty,
	}
}

// Reset clears collected state in place, keeping the session alive. Used when
// the user declines at the confirm step.
func (s *QuoteSession) Reset(now time.Time) {
	s.CreatedAt = now
	s.Step = StepAskQty
	s.Quantity = 0
	s.Locations = nil
	s.Tier = ""
	s.Pending = ""
}

// BranchOption is one selectable answer inside a pending FAQ branch.
type BranchOption struct {
	Label  string
	Answer string
}

// PendingBranch tracks an FAQ branch awaiting the user's disambiguating
// reply. It is one-shot: consumed by the next message in the same slot.
type PendingBranch struct {
	CreatedAt time.Time
	FAQID     string
	Options   []BranchOption
}
