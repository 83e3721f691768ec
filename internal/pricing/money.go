// Package pricing computes screen-print quotes: per-unit run charges from
// tenant band tables, chat-flow totals, console quotes with markup, extras,
// screen charges, and area-priced upsells. All arithmetic uses exact decimals;
// rounding to cents happens once per displayed figure.
package pricing

import "github.com/shopspring/decimal"

// Cents rounds a money amount to two fractional digits, half away from zero.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
