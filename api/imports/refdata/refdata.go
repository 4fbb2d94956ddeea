package refdata

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"TradeFlowERP/api/imports/match"
)

// Reader supplies the read-only reference sets the entity matcher works
// against. Master-data ownership lives elsewhere; this package only reads.
type Reader interface {
	Customers(ctx context.Context, company string) ([]match.Customer, error)
	Invoices(ctx context.Context, company string) ([]match.Invoice, error)
}

// PgReader reads reference data from the production postgres schema.
type PgReader struct {
	pool *pgxpool.Pool
}

func NewPgReader(pool *pgxpool.Pool) *PgReader {
	return &PgReader{pool: pool}
}

func (r *PgReader) Customers(ctx context.Context, company string) ([]match.Customer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.customer_id, COALESCE(c.customer_code, ''), c.customer_name,
		       COALESCE(c.address_line1, '') || ' ' || COALESCE(c.address_line2, ''),
		       COALESCE(c.city, ''), COALESCE(c.province, '')
		FROM customers c
		WHERE c.company_code = $1 AND c.is_deleted = false
	`, company)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []match.Customer
	for rows.Next() {
		var c match.Customer
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Address, &c.City, &c.Province); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Invoices returns non-cancelled invoices only; cancelled paper must never
// win an exact-identifier match.
func (r *PgReader) Invoices(ctx context.Context, company string) ([]match.Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.invoice_id, i.invoice_no, i.customer_id, COALESCE(i.total_amount, 0)
		FROM invoices i
		WHERE i.company_code = $1 AND i.status <> 'CANCELLED'
	`, company)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []match.Invoice
	for rows.Next() {
		var inv match.Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.CustomerID, &inv.Amount); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
