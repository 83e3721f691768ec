package conversation

import (
	"strings"

	"github.com/jkindrix/shopquote/internal/tenant"
	"github.com/jkindrix/shopquote/internal/textparse"
)

// matchFAQ returns the first entry whose normalized trigger appears as a
// substring of the normalized message. Entry order in the tenant file is the
// priority order.
func matchFAQ(entries []tenant.FAQEntry, msg string) *tenant.FAQEntry {
	text := textparse.Normalize(msg)
	if text == "" {
		return nil
	}
	for i := range entries {
		for _, trigger := range entries[i].Triggers {
			t := textparse.Normalize(trigger)
			if t != "" && strings.Contains(text, t) {
				return &entries[i]
			}
		}
	}
	return nil
}
