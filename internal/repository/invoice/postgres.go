package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meloogk/O-Maillot-Backend/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const invoiceColumns = `id::text, payment_id::text, number, amount, currency, issued_at`

func (r *postgresRepo) Create(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error) {
	created, err := scanInvoice(r.pool.QueryRow(ctx, `
INSERT INTO invoices (payment_id, number, amount, currency)
VALUES ($1, $2, $3, $4)
RETURNING `+invoiceColumns,
		inv.PaymentID, inv.Number, inv.Amount, inv.Currency,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	return r.fetch(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

func (r *postgresRepo) GetByPayment(ctx context.Context, paymentID string) (*domain.Invoice, error) {
	return r.fetch(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE payment_id = $1`, paymentID)
}

func (r *postgresRepo) fetch(ctx context.Context, query, arg string) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY issued_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (r *postgresRepo) NextSequence(ctx context.Context, year int) (int, error) {
	prefix := fmt.Sprintf("FAC-%d-", year)
	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT count(*) FROM invoices WHERE number LIKE $1 || '%'
`, prefix).Scan(&count); err != nil {
		return 0, err
	}
	return count + 1, nil
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := row.Scan(&inv.ID, &inv.PaymentID, &inv.Number, &inv.Amount, &inv.Currency, &inv.IssuedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}
