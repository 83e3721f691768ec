// Package repository implements persistence for archived quotes.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jkindrix/shopquote/internal/domain"
)

// Query timeouts.
const (
	defaultWriteTimeout = 10 * time.Second
	defaultListTimeout  = 10 * time.Second
)

// QuoteArchiveRepository implements domain.QuoteArchive using PostgreSQL.
type QuoteArchiveRepository struct {
	pool *pgxpool.Pool
	// onQuery, if non-nil, receives (operation, duration, err) per query.
	onQuery func(operation string, duration time.Duration, err error)
}

// NewQuoteArchiveRepository creates a new QuoteArchiveRepository.
func NewQuoteArchiveRepository(pool *pgxpool.Pool, onQuery func(string, time.Duration, error)) *QuoteArchiveRepository {
	return &QuoteArchiveRepository{pool: pool, onQuery: onQuery}
}

// Create inserts an archived quote.
func (r *QuoteArchiveRepository) Create(ctx context.Context, rec *domain.QuoteRecord) error {
	ctx, cancel := withTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	query := `
		INSERT INTO quote_archive (
			id, tenant, source, quantity, client_total, cost_total, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	start := time.Now()
	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.Tenant,
		rec.Source,
		rec.Quantity,
		rec.ClientTotal,
		rec.CostTotal,
		rec.CreatedAt,
	)
	r.record("insert", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert quote record: %w", err)
	}

	return nil
}

// ListByTenant returns archived quotes for a tenant, newest first.
func (r *QuoteArchiveRepository) ListByTenant(ctx context.Context, tenant string, limit, offset int) ([]*domain.QuoteRecord, error) {
	ctx, cancel := withTimeout(ctx, defaultListTimeout)
	defer cancel()

	query := `
		SELECT id, tenant, source, quantity, client_total, cost_total, created_at
		FROM quote_archive
		WHERE tenant = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	start := time.Now()
	rows, err := r.pool.Query(ctx, query, tenant, limit, offset)
	r.record("select", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list quote records: %w", err)
	}
	defer rows.Close()

	var records []*domain.QuoteRecord
	for rows.Next() {
		rec := &domain.QuoteRecord{}
		if err := rows.Scan(
			&rec.ID,
			&rec.Tenant,
			&rec.Source,
			&rec.Quantity,
			&rec.ClientTotal,
			&rec.CostTotal,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read quote records: %w", err)
	}

	return records, nil
}

func (r *QuoteArchiveRepository) record(operation string, start time.Time, err error) {
	if r.onQuery != nil {
		r.onQuery(operation, time.Since(start), err)
	}
}

// withTimeout adds a timeout to a context, respecting an existing sooner
// deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) < timeout {
			return ctx, func() {}
		}
	}
	return context.WithTimeout(ctx, timeout)
}
