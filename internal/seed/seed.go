package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Title       string
	Description string
	Price       int64
	Discount    int64
	Featured    bool
	Stock       map[string]int
}

// Apply inserts demo data for manual testing: an admin account and a few
// jerseys with per-size stock. Idempotent via ON CONFLICT and existence
// checks.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureAdmin(ctx, pool, "admin@o-maillot.ci", "admin123"); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	products := []productSeed{
		{
			Title:       "Maillot domicile 2025",
			Description: "Maillot officiel domicile, saison 2025",
			Price:       25000,
			Featured:    true,
			Stock:       map[string]int{"S": 10, "M": 15, "L": 12, "XL": 6},
		},
		{
			Title:       "Maillot extérieur 2025",
			Description: "Maillot officiel extérieur, saison 2025",
			Price:       25000,
			Discount:    10,
			Stock:       map[string]int{"M": 8, "L": 8, "XL": 4, "XXL": 2},
		},
		{
			Title:       "Maillot rétro 1998",
			Description: "Réédition du maillot mythique",
			Price:       35000,
			Stock:       map[string]int{"S": 3, "M": 5, "L": 3},
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %q: %w", p.Title, err)
		}
	}

	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
INSERT INTO users (name, email, password_hash, role, referral_code)
VALUES ('Administrateur', $1, $2, 'admin', 'OM-ADMIN001')
`, email, string(hash))
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM products WHERE title = $1`, p.Title).Scan(&id)
	if err != nil {
		if err := pool.QueryRow(ctx, `
INSERT INTO products (title, description, price, discount, featured)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text
`, p.Title, p.Description, p.Price, p.Discount, p.Featured).Scan(&id); err != nil {
			return err
		}
	}

	for size, qty := range p.Stock {
		if _, err := pool.Exec(ctx, `
INSERT INTO product_sizes (product_id, size, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (product_id, size) DO UPDATE SET quantity = EXCLUDED.quantity
`, id, size, qty); err != nil {
			return err
		}
	}
	return nil
}
