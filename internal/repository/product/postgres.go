package product

import (
	"context"
	"errors"

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

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id string
	if err := tx.QueryRow(ctx, `
INSERT INTO products (title, description, price, discount, featured)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text
`, p.Title, p.Description, p.Price, p.Discount, p.Featured).Scan(&id); err != nil {
		return nil, err
	}

	if err := replaceSizes(ctx, tx, id, p.Sizes); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
UPDATE products
SET title = $1, description = $2, price = $3, discount = $4, featured = $5
WHERE id = $6
`, p.Title, p.Description, p.Price, p.Discount, p.Featured, p.ID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	if err := replaceSizes(ctx, tx, p.ID, p.Sizes); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, p.ID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, `
SELECT id::text, title, description, price, discount, featured, created_at
FROM products
WHERE id = $1
`, id).Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Discount, &p.Featured, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	sizes, err := r.sizesFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Sizes = sizes
	return &p, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, title, description, price, discount, featured, created_at
FROM products
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Discount, &p.Featured, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range products {
		sizes, err := r.sizesFor(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].Sizes = sizes
	}
	return products, nil
}

func (r *postgresRepo) sizesFor(ctx context.Context, productID string) ([]domain.SizeVariant, error) {
	rows, err := r.pool.Query(ctx, `
SELECT size, quantity FROM product_sizes WHERE product_id = $1 ORDER BY size
`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sizes := []domain.SizeVariant{}
	for rows.Next() {
		var v domain.SizeVariant
		if err := rows.Scan(&v.Size, &v.Quantity); err != nil {
			return nil, err
		}
		sizes = append(sizes, v)
	}
	return sizes, rows.Err()
}

func replaceSizes(ctx context.Context, tx pgx.Tx, productID string, sizes []domain.SizeVariant) error {
	if _, err := tx.Exec(ctx, `DELETE FROM product_sizes WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for _, v := range sizes {
		if _, err := tx.Exec(ctx, `
INSERT INTO product_sizes (product_id, size, quantity) VALUES ($1, $2, $3)
`, productID, v.Size, v.Quantity); err != nil {
			return err
		}
	}
	return nil
}
