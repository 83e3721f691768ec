package conversation

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jkindrix/shopquote/internal/clock"
	"github.com/jkindrix/shopquote/internal/domain"
	"github.com/jkindrix/shopquote/internal/session"
	"github.com/jkindrix/shopquote/internal/tenant"
	"github.com/jkindrix/shopquote/internal/textparse"
)

// Service answers chat messages. It owns the quote session and pending
// branch stores; tenant data is loaded per message so file edits apply
// immediately.
type Service struct {
	tenants  *tenant.Store
	sessions *session.Store[*domain.QuoteSession]
	branches *session.Store[*domain.PendingBranch]
	clk      clock.Clock
	logger   *zap.Logger

	// forceWizard routes every pricing-looking message into the step flow
	// instead of one-shot answers.
	forceWizard bool

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Config bundles the service dependencies.
type Config struct {
	Tenants     *tenant.Store
	Sessions    *session.Store[*domain.QuoteSession]
	Branches    *session.Store[*domain.PendingBranch]
	Clock       clock.Clock
	Logger      *zap.Logger
	ForceWizard bool
	Seed        int64
}

// NewService creates a conversation Service.
func NewService(cfg Config) *Service {
	return &Service{
		tenants:     cfg.Tenants,
		sessions:    cfg.Sessions,
		branches:    cfg.Branches,
		clk:         cfg.Clock,
		logger:      cfg.Logger,
		forceWizard: cfg.ForceWizard,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
	}
}

// SweepExpired drops expired quote sessions and pending branches, returning
// how many entries were removed. Every turn and console request starts here
// so the stores shrink under load even without the background sweeper.
func (s *Service) SweepExpired() int {
	return s.sessions.Sweep() + s.branches.Sweep()
}

// Respond handles one chat turn. The precedence is fixed: an active quote
// flow wins, then reset commands, then a pending FAQ branch reply, then
// greeting and freeform quote detection, then single-shot pricing, then FAQ,
// then the fallback.
func (s *Service) Respond(tenantID, sid, userMessage string) (*Response, error) {
	s.SweepExpired()

	data, err := s.tenants.Data(tenantID)
	if err != nil {
		return nil, err
	}
	key := session.Key{Tenant: tenantID, SID: sid}

	if resp := s.handleQuoteFlow(data, key, userMessage); resp != nil {
		return resp, nil
	}

	if textparse.IsReset(textparse.Normalize(userMessage)) {
		return s.startNewSession(data, key), nil
	}

	if resp := s.consumeBranch(key, userMessage); resp != nil {
		return resp, nil
	}

	if s.forceWizard {
		if resp := s.maybeStartQuoteFlow(data, key, userMessage); resp != nil {
			return resp, nil
		}
	}

	if textparse.IsGreeting(userMessage) {
		return branch(s.pickGreeting(data.Config), []Option{{Label: "Get a Quote", Value: "quote"}}), nil
	}

	if resp := s.maybeStartQuoteFlow(data, key, userMessage); resp != nil {
		return resp, nil
	}

	if qty, colors := textparse.ExtractQuantityAndColors(userMessage); qty > 0 && colors > 0 {
		if text := priceQuote(data.Pricing, qty, colors); text != "" {
			return answer(text), nil
		}
	}

	if resp := s.handleFAQ(data, key, userMessage); resp != nil {
		return resp, nil
	}

	if text := pricingResponse(data.Pricing, userMessage); text != "" {
		return answer(text), nil
	}

	return answer("I'm not sure yet—try asking about hours, directions, or say a quantity and number of colors for a quote."), nil
}

// startNewSession begins the step flow at the quantity question.
func (s *Service) startNewSession(data *tenant.Data, key session.Key) *Response {
	s.sessions.Put(key, domain.NewQuoteSession(s.clk.Now()))
	return s.askQuantity(data.Pricing, "How many shirts?")
}

// maybeStartQuoteFlow starts a session when the message shows pricing intent
// or contains numbers, prefilling whatever the freeform parse understood. A
// fully specified request skips straight to the add-more step.
func (s *Service) maybeStartQuoteFlow(data *tenant.Data, key session.Key, userMessage string) *Response {
	text := textparse.Normalize(userMessage)
	if textparse.IsReset(text) {
		return s.startNewSession(data, key)
	}

	trigger := strings.ContainsAny(text, "0123456789")
	if !trigger {
		for _, word := range []string{"quote", "price", "pricing", "estimate", "cost"} {
			if strings.Contains(text, word) {
				trigger = true
				break
			}
		}
	}
	if !trigger {
		return nil
	}
	if _, active := s.sessions.Get(key); active {
		return nil
	}

	parsed := textparse.ParseFreeform(userMessage, data.Config.Printing.MaxColors)

	var locs []domain.PrintLocation
	for _, m := range parsed.Locations {
		colors := m.Colors
		if colors == 0 {
			colors = parsed.GlobalColors
		}
		if colors == 0 {
			continue
		}
		locs = append(locs, domain.PrintLocation{Location: m.Location, Colors: colors})
	}

	if parsed.Quantity > 0 && len(locs) > 0 {
		sess := domain.NewQuoteSession(s.clk.Now())
		sess.Step = domain.StepAskMore
		sess.Quantity = parsed.Quantity
		sess.Locations = locs
		s.sessions.Put(key, sess)
		return s.askMore()
	}

	if parsed.Quantity > 0 {
		sess := domain.NewQuoteSession(s.clk.Now())
		sess.Step = domain.StepAskLoc
		sess.Quantity = parsed.Quantity
		s.sessions.Put(key, sess)
		return branch("First location — pick one.", placementButtons(data.Config, nil)).
			withState(domain.StepAskLoc)
	}

	return s.startNewSession(data, key)
}

// consumeBranch resolves a pending FAQ branch. The branch is one-shot: it is
// removed whether or not the reply matched an option, so a stray message
// cannot leave the conversation stuck in a menu.
func (s *Service) consumeBranch(key session.Key, userMessage string) *Response {
	pending, ok := s.branches.Take(key)
	if !ok {
		return nil
	}
	text := textparse.Normalize(userMessage)
	for _, opt := range pending.Options {
		if textparse.Normalize(opt.Label) == text {
			return answer(opt.Answer)
		}
	}
	return nil
}

// handleFAQ matches the message against tenant FAQ entries. Branch entries
// ask a follow-up with options; start_quote entries try to price the same
// message or ask for the missing details.
func (s *Service) handleFAQ(data *tenant.Data, key session.Key, userMessage string) *Response {
	matched := matchFAQ(data.FAQ, userMessage)
	if matched == nil {
		return nil
	}

	if matched.Type == "branch" {
		if data.Config.UI.EnableBranching && len(matched.Options) > 0 {
			options := make([]domain.BranchOption, 0, len(matched.Options))
			buttons := make([]Option, 0, len(matched.Options))
			for _, opt := range matched.Options {
				options = append(options, domain.BranchOption{Label: opt.Label, Answer: opt.Answer})
				buttons = append(buttons, Option{Label: opt.Label, Value: opt.Label})
			}
			s.branches.Put(key, &domain.PendingBranch{
				CreatedAt: s.clk.Now(),
				FAQID:     matched.ID,
				Options:   options,
			})
			prompt := matched.Prompt
			if prompt == "" {
				prompt = "Choose an option:"
			}
			return branch(prompt, buttons)
		}
		if len(matched.Options) > 0 {
			return answer(orDefault(matched.Options[0].Answer, "Can you clarify what part you're asking about?"))
		}
		return answer(orDefault(matched.Prompt, "Can you clarify what part you're asking about?"))
	}

	if matched.Answer != "" {
		if matched.Action == "start_quote" {
			if text := pricingResponse(data.Pricing, userMessage); text != "" {
				return answer(text)
			}
			qty, colors := textparse.ExtractQuantityAndColors(userMessage)
			var need []string
			if qty == 0 {
				need = append(need, "quantity")
			}
			if colors == 0 {
				need = append(need, "number of colors")
			}
			if len(need) > 0 {
				return answer(fmt.Sprintf(
					`Great—let's get you a quick quote. Please reply with your %s (e.g., "72 shirts, 3 colors").`,
					strings.Join(need, " and ")))
			}
		}
		return answer(matched.Answer)
	}
	return nil
}

var stockGreetings = []string{
	"👋 Hi there! Welcome to %s.",
	"Hello! Need a quick screen-print quote?",
	"Hey! I can price tees fast — want a quote?",
	"Hi! Tell me quantity + colors to get started.",
}

func (s *Service) pickGreeting(cfg *tenant.ShopConfig) string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	if len(cfg.UI.Greetings) > 0 {
		return cfg.UI.Greetings[s.rng.Intn(len(cfg.UI.Greetings))]
	}
	g := stockGreetings[s.rng.Intn(len(stockGreetings))]
	if strings.Contains(g, "%s") {
		return fmt.Sprintf(g, cfg.BrandName)
	}
	return g
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
