package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteRecord is an archived quote computation. Archiving is optional and
// exists for margin reporting: ClientTotal is what the customer was quoted,
// CostTotal is the shop's internal cost for the same job.
type QuoteRecord struct {
	ID          uuid.UUID
	Tenant      string
	Source      string // "chat" or "console"
	Quantity    int
	ClientTotal decimal.Decimal
	CostTotal   decimal.Decimal
	CreatedAt   time.Time
}

// NewQuoteRecord builds an archive row for a computed quote.
func NewQuoteRecord(tenant, source string, quantity int, clientTotal, costTotal decimal.Decimal, now time.Time) *QuoteRecord {
	return &QuoteRecord{
		ID:          uuid.New(),
		Tenant:      tenant,
		Source:      source,
		Quantity:    quantity,
		ClientTotal: clientTotal,
		CostTotal:   costTotal,
		CreatedAt:   now,
	}
}

// Margin returns client total minus cost total.
func (r *QuoteRecord) Margin() decimal.Decimal {
	return r.ClientTotal.Sub(r.CostTotal)
}

// QuoteArchive persists computed quotes for later margin reporting.
type QuoteArchive interface {
	Create(ctx context.Context, rec *QuoteRecord) error
	ListByTenant(ctx context.Context, tenant string, limit, offset int) ([]*QuoteRecord, error)
}
