package cart

import (
	"context"
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

func (r *postgresRepo) Create(ctx context.Context, c domain.Cart) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (user_id, session_id)
VALUES ($1, $2)
RETURNING id::text
`
	var id string
	if err := r.pool.QueryRow(ctx, q, c.UserID, c.SessionID).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	return r.fetch(ctx, `
SELECT id::text, user_id::text, session_id, updated_at FROM carts WHERE id = $1
`, id)
}

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.fetch(ctx, `
SELECT id::text, user_id::text, session_id, updated_at FROM carts WHERE user_id = $1
`, userID)
}

func (r *postgresRepo) GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return r.fetch(ctx, `
SELECT id::text, user_id::text, session_id, updated_at FROM carts WHERE session_id = $1
`, sessionID)
}

func (r *postgresRepo) fetch(ctx context.Context, query, arg string) (*domain.Cart, error) {
	var c domain.Cart
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&c.ID, &c.UserID, &c.SessionID, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, product_id::text, size, quantity
FROM cart_items
WHERE cart_id = $1
ORDER BY id
`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Items = []domain.CartItem{}
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Size, &it.Quantity); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

func (r *postgresRepo) UpsertItem(ctx context.Context, cartID, productID string, size domain.Size, quantity int) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO cart_items (cart_id, product_id, size, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_id, size)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
`, cartID, productID, size, quantity)
	if err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepo) SetItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE cart_items SET quantity = $1 WHERE id = $2 AND cart_id = $3
`, quantity, itemID, cartID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepo) RemoveItem(ctx context.Context, cartID, itemID string) error {
	tag, err := r.pool.Exec(ctx, `
DELETE FROM cart_items WHERE id = $1 AND cart_id = $2
`, itemID, cartID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepo) Delete(ctx context.Context, cartID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Merge(ctx context.Context, sourceCartID, targetCartID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (cart_id, product_id, size, quantity)
SELECT $1, product_id, size, quantity FROM cart_items WHERE cart_id = $2
ON CONFLICT (cart_id, product_id, size)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
`, targetCartID, sourceCartID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, sourceCartID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, targetCartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) touch(ctx context.Context, cartID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}
