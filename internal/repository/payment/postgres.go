package payment

import (
	"context"
	"encoding/json"
	"errors"

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

const paymentColumns = `
id::text, order_id::text, user_id::text, method, status, amount, currency, transaction_id, details, paid_at
`

func (r *postgresRepo) Create(ctx context.Context, p domain.Payment, points int) (*domain.Payment, error) {
	details, err := marshalDetails(p.Details)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id string
	if err := tx.QueryRow(ctx, `
INSERT INTO payments (order_id, user_id, method, status, amount, currency, transaction_id, details, paid_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id::text
`,
		p.OrderID, p.UserID, p.Method, p.Status, p.Amount, p.Currency, p.TransactionID, details, p.PaidAt,
	).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	if points != 0 {
		if _, err := tx.Exec(ctx, `
UPDATE users SET loyalty_points = loyalty_points + $1 WHERE id = $2
`, points, p.UserID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.fetch(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *postgresRepo) GetByOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	return r.fetch(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID)
}

func (r *postgresRepo) fetch(ctx context.Context, query, arg string) (*domain.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY paid_at DESC`, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Payment, error) {
	return r.list(ctx, `SELECT ` + paymentColumns + ` FROM payments ORDER BY paid_at DESC`)
}

func (r *postgresRepo) list(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

const historyColumns = `
id::text, order_id::text, user_id::text, method, status, amount, currency, transaction_id, details, paid_at, created_at
`

func (r *postgresRepo) CreateHistory(ctx context.Context, h domain.PaymentHistory) (*domain.PaymentHistory, error) {
	details, err := marshalDetails(h.Details)
	if err != nil {
		return nil, err
	}

	var id string
	if err := r.pool.QueryRow(ctx, `
INSERT INTO payment_history (order_id, user_id, method, status, amount, currency, transaction_id, details, paid_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id::text
`,
		h.OrderID, h.UserID, h.Method, h.Status, h.Amount, h.Currency, h.TransactionID, details, h.PaidAt,
	).Scan(&id); err != nil {
		return nil, err
	}
	return r.GetHistory(ctx, id)
}

func (r *postgresRepo) GetHistory(ctx context.Context, id string) (*domain.PaymentHistory, error) {
	h, err := scanHistory(r.pool.QueryRow(ctx, `SELECT `+historyColumns+` FROM payment_history WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

func (r *postgresRepo) ListHistoryByUser(ctx context.Context, userID string) ([]domain.PaymentHistory, error) {
	return r.listHistory(ctx, `SELECT `+historyColumns+` FROM payment_history WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *postgresRepo) ListAllHistory(ctx context.Context) ([]domain.PaymentHistory, error) {
	return r.listHistory(ctx, `SELECT ` + historyColumns + ` FROM payment_history ORDER BY created_at DESC`)
}

func (r *postgresRepo) listHistory(ctx context.Context, query string, args ...any) ([]domain.PaymentHistory, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PaymentHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *h)
	}
	return entries, rows.Err()
}

func (r *postgresRepo) DeleteHistory(ctx context.Context, id, userID string, pointsToRemove int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM payment_history WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if pointsToRemove > 0 {
		if _, err := tx.Exec(ctx, `
UPDATE users SET loyalty_points = GREATEST(0, loyalty_points - $1) WHERE id = $2
`, pointsToRemove, userID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func marshalDetails(details map[string]string) ([]byte, error) {
	if details == nil {
		details = map[string]string{}
	}
	return json.Marshal(details)
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	var details []byte
	if err := row.Scan(
		&p.ID, &p.OrderID, &p.UserID, &p.Method, &p.Status, &p.Amount,
		&p.Currency, &p.TransactionID, &details, &p.PaidAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(details, &p.Details); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanHistory(row pgx.Row) (*domain.PaymentHistory, error) {
	var h domain.PaymentHistory
	var details []byte
	if err := row.Scan(
		&h.ID, &h.OrderID, &h.UserID, &h.Method, &h.Status, &h.Amount,
		&h.Currency, &h.TransactionID, &details, &h.PaidAt, &h.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(details, &h.Details); err != nil {
		return nil, err
	}
	return &h, nil
}
