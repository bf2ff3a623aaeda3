package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
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

func (r *postgresRepo) CreateFromCart(ctx context.Context, in CreateFromCartInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Reserve stock first: decrement-if-sufficient, all lines or nothing.
	for _, it := range in.Items {
		tag, err := tx.Exec(ctx, `
UPDATE product_sizes
SET quantity = quantity - $3
WHERE product_id = $1 AND size = $2 AND quantity >= $3
`, it.ProductID, it.Size, it.Quantity)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("product %s size %s: %w", it.ProductID, it.Size, domain.ErrInsufficientStock)
		}
	}

	var orderID string
	if err := tx.QueryRow(ctx, `
INSERT INTO orders (user_id, total_price, applied_discount, street, city, postal_code, country, status, expected_delivery)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id::text
`,
		in.UserID,
		in.TotalPrice,
		in.AppliedDiscount,
		in.DeliveryAddress.Street,
		in.DeliveryAddress.City,
		in.DeliveryAddress.PostalCode,
		in.DeliveryAddress.Country,
		domain.OrderPending,
		in.ExpectedDelivery,
	).Scan(&orderID); err != nil {
		return nil, err
	}

	for _, it := range in.Items {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, product_id, size, quantity)
VALUES ($1, $2, $3, $4)
`, orderID, it.ProductID, it.Size, it.Quantity); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, in.CartID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

const orderColumns = `
id::text, user_id::text, total_price, applied_discount, street, city, postal_code, country, status, expected_delivery, created_at
`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`)
}

func (r *postgresRepo) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetExpectedDelivery(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET expected_delivery = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Cancel(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, domain.OrderCancelled, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
UPDATE product_sizes ps
SET quantity = ps.quantity + oi.quantity
FROM order_items oi
WHERE oi.order_id = $1 AND ps.product_id = oi.product_id AND ps.size = oi.size
`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) itemsFor(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT product_id::text, size, quantity FROM order_items WHERE order_id = $1 ORDER BY id
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Size, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.TotalPrice,
		&o.AppliedDiscount,
		&o.DeliveryAddress.Street,
		&o.DeliveryAddress.City,
		&o.DeliveryAddress.PostalCode,
		&o.DeliveryAddress.Country,
		&o.Status,
		&o.ExpectedDelivery,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}
