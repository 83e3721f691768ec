package conversation

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jkindrix/shopquote/internal/domain"
	"github.com/jkindrix/shopquote/internal/errors"
	"github.com/jkindrix/shopquote/internal/pricing"
	"github.com/jkindrix/shopquote/internal/session"
	"github.com/jkindrix/shopquote/internal/tenant"
	"github.com/jkindrix/shopquote/internal/textparse"
)

var colorShortPattern = regexp.MustCompile(`^\d{1,2}c$`)

// handleQuoteFlow advances an active quote session by one message. Returns
// nil when no session exists for the key, letting the caller continue with
// greeting, freeform, and FAQ handling. The whole turn runs under the store
// lock for the key, so two concurrent messages cannot fork one session.
func (s *Service) handleQuoteFlow(data *tenant.Data, key session.Key, userMessage string) *Response {
	var resp *Response
	s.sessions.Update(key, func(sess *domain.QuoteSession, ok bool) (*domain.QuoteSession, bool) {
		if !ok {
			return nil, false
		}
		msg := strings.ToLower(strings.TrimSpace(userMessage))

		if textparse.IsReset(msg) {
			fresh := domain.NewQuoteSession(s.clk.Now())
			resp = s.askQuantity(data.Pricing, "How many shirts?")
			return fresh, true
		}

		var keep bool
		resp, keep = s.step(data, sess, msg, userMessage)
		return sess, keep
	})
	return resp
}

func (s *Service) step(data *tenant.Data, sess *domain.QuoteSession, msg, raw string) (*Response, bool) {
	cfg, table := data.Config, data.Pricing

	switch sess.Step {
	case domain.StepAskQty:
		if strings.ContainsAny(msg, "0123456789") {
			n := textparse.FirstNumber(msg)
			if n < 1 {
				n = 1
			}
			sess.Quantity = n
			if sess.Quantity < table.MinQty {
				sess.Step = domain.StepSmallOrder
				return s.smallOrderBranch(cfg, table), true
			}
			sess.Step = domain.StepAskLoc
			return s.askLocation(cfg, sess, "First location — pick one."), true
		}
		return s.askQuantity(table, "How many shirts?"), true

	case domain.StepSmallOrder:
		switch msg {
		case "change_qty", "change quantity", "qty", "quantity":
			sess.Quantity = 0
			sess.Step = domain.StepAskQty
			return s.askQuantity(table, "No problem — how many shirts?"), true
		case "dtf", "embroidery":
			pol := cfg.UI.SmallOrder
			label := pol.Label
			if label == "" {
				label = strings.ToUpper(msg[:1]) + msg[1:]
			}
			text := fmt.Sprintf("Great — we'll follow up with %s options shortly. 👍", label)
			if pol.Link != "" {
				text += " — see options here: " + pol.Link
			}
			return answer(text), false
		}
		return s.smallOrderBranch(cfg, table), true

	case domain.StepAskLoc:
		loc, colors := textparse.ParseLocationColors(raw)
		if loc != "" && colors > 0 {
			sess.Locations = append(sess.Locations, domain.PrintLocation{Location: loc, Colors: colors})
			sess.Pending = ""
			sess.Step = domain.StepAskMore
			return s.askMore(), true
		}
		if strings.HasPrefix(msg, "placement:") {
			sess.Pending = strings.SplitN(msg, ":", 2)[1]
			sess.Step = domain.StepAskColors
			return s.askColors(cfg, sess.Pending, ""), true
		}
		if msg == "custom_location" || loc != "" {
			if loc != "" {
				sess.Pending = loc
				sess.Step = domain.StepAskColors
				return s.askColors(cfg, sess.Pending, ""), true
			}
			return branch(
				`Type the location (front, back, left sleeve, right sleeve) and colors, e.g., "back 2 colors".`,
				placementButtons(cfg, sess.Locations),
			).withState(domain.StepAskLoc), true
		}
		return branch("Pick a print location.", placementButtons(cfg, sess.Locations)).
			withState(domain.StepAskLoc), true

	case domain.StepAskColors:
		maxColors := cfg.Printing.MaxColors
		chosen := 0
		switch {
		case colorShortPattern.MatchString(msg):
			chosen, _ = strconv.Atoi(strings.TrimSuffix(msg, "c"))
		case strings.HasPrefix(msg, "7-"), msg == "7+c", msg == "7+":
			chosen = 7
			if maxColors < 7 {
				chosen = maxColors
			}
		default:
			if n := textparse.FirstNumber(msg); n > 0 {
				chosen = n
				if chosen > maxColors {
					chosen = maxColors
				}
			}
		}
		if chosen >= 1 && chosen <= maxColors {
			sess.Locations = append(sess.Locations, domain.PrintLocation{Location: sess.Pending, Colors: chosen})
			sess.Pending = ""
			sess.Step = domain.StepAskMore
			return s.askMore(), true
		}
		prompt := fmt.Sprintf("How many colors for %s? (You can also type 1–%d)",
			textparse.LabelFor(sess.Pending), maxColors)
		return branch(prompt, colorButtons(cfg)).withState(domain.StepAskColors), true

	case domain.StepAskMore:
		switch msg {
		case "yes", "y":
			sess.Step = domain.StepAskLoc
			return s.askLocation(cfg, sess, "Next location — pick one."), true
		case "no", "n":
			if cfg.Garments.TiersEnabled && len(cfg.Garments.Tiers) > 0 {
				sess.Step = domain.StepAskTier
				return branch("Choose a shirt option:", tierButtons(cfg)).
					withState(domain.StepAskTier), true
			}
			sess.Step = domain.StepConfirm
			return branch(summaryText(sess.Quantity, sess.Locations, cfg, ""), confirmButtons()).
				withState(domain.StepConfirm), true
		}
		return branch("Please reply yes or no: add another print location?", yesNoButtons()).
			withState(domain.StepAskMore), true

	case domain.StepAskTier:
		if cfg.Garments.TiersEnabled {
			if _, ok := cfg.Garments.Tiers[msg]; ok {
				sess.Tier = msg
				sess.Step = domain.StepConfirm
				return branch(summaryText(sess.Quantity, sess.Locations, cfg, sess.Tier), confirmButtons()).
					withState(domain.StepConfirm), true
			}
		}
		return branch("Please choose a shirt option.", tierButtons(cfg)).
			withState(domain.StepAskTier), true

	case domain.StepConfirm:
		switch msg {
		case "yes", "y", "compute":
			return s.computeAndFinish(data, sess)
		case "no", "n", "start over", "start-over", "new quote", "new-quote":
			sess.Reset(s.clk.Now())
			return s.askQuantity(table, "No problem—how many shirts?"), true
		}
		return branch("Type 'Compute' to calculate or 'Start Over' to reset.", confirmButtons()).
			withState(domain.StepConfirm), true
	}

	return nil, false
}

// computeAndFinish prices the collected session and ends it either way: a
// finished quote and a failed one both drop the session.
func (s *Service) computeAndFinish(data *tenant.Data, sess *domain.QuoteSession) (*Response, bool) {
	result, err := pricing.ComputeQuoteTotal(data.Pricing, data.Config, sess.Quantity, sess.Locations, sess.Tier)
	if err != nil {
		if errors.IsUserError(err) || errors.IsCode(err, errors.CodePricingGap) {
			return answer(userFacingMessage(err)), false
		}
		return answer("Sorry—couldn't compute that quote. Please try again."), false
	}

	payload := &QuotePayload{
		Quantity: result.Quantity,
		Tier:     sess.Tier,
	}
	for _, loc := range result.Locations {
		payload.Locations = append(payload.Locations, QuoteLocation{Location: loc.Location, Colors: loc.Colors})
	}

	resp := branch(quoteLines(result), []Option{
		{Label: "⬇️ Download PDF", Value: "download_pdf"},
		{Label: "New Quote", Value: "new quote"},
	})
	resp.Quote = payload
	return resp, false
}

func userFacingMessage(err error) string {
	if errors.IsCode(err, errors.CodePricingGap) {
		return "Sorry, the pricing table doesn't cover that color count."
	}
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return "Sorry—couldn't compute that quote. Please try again."
}

func (s *Service) askQuantity(table *tenant.PricingTable, prompt string) *Response {
	return branch(prompt, qtyButtons(table)).withState(domain.StepAskQty)
}

func (s *Service) askLocation(cfg *tenant.ShopConfig, sess *domain.QuoteSession, prompt string) *Response {
	return branch(prompt, placementButtons(cfg, sess.Locations)).withState(domain.StepAskLoc)
}

func (s *Service) askColors(cfg *tenant.ShopConfig, loc, note string) *Response {
	prompt := fmt.Sprintf("How many colors for %s?", textparse.LabelFor(loc))
	if note != "" {
		prompt += " " + note
	}
	return branch(prompt, colorButtons(cfg)).withState(domain.StepAskColors)
}

func (s *Service) askMore() *Response {
	return branch("Add another print location?", yesNoButtons()).withState(domain.StepAskMore)
}

// smallOrderBranch renders the below-minimum policy: a DTF or embroidery
// referral with its CTA, or a plain minimum notice when the shop offers no
// alternative.
func (s *Service) smallOrderBranch(cfg *tenant.ShopConfig, table *tenant.PricingTable) *Response {
	pol := cfg.UI.SmallOrder

	if pol.Suggest == "none" {
		ctaAlt := pol.CTAAlt
		if ctaAlt == "" {
			ctaAlt = "Change Quantity"
		}
		return branch(
			fmt.Sprintf("Our screen-print minimum is %d.", table.MinQty),
			[]Option{{Label: ctaAlt, Value: "change_qty"}},
		).withState(domain.StepAskQty)
	}

	text := fmt.Sprintf("Orders under %d are best with %s—ask us for options!", table.MinQty, pol.Label)
	if pol.Link != "" {
		text += " — see options here: " + pol.Link
	}
	return branch(text, []Option{
		{Label: pol.CTAGet, Value: pol.Suggest},
		{Label: pol.CTAAlt, Value: "change_qty"},
	}).withState(domain.StepSmallOrder)
}
