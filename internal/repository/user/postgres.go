package user

import (
	"context"
	"errors"
	"strings"

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

const userColumns = `
id::text, name, email, password_hash, role, phone, active, loyalty_points,
referral_code, referral_code_used, referral_points, total_earned, created_at
`

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (name, email, password_hash, role, phone, active, referral_code)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns
	row := r.pool.QueryRow(ctx, q,
		u.Name,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.Role,
		u.Phone,
		u.Active,
		u.ReferralCode,
	)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	created.ReferredUsers = []string{}
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetch(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetch(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
}

func (r *postgresRepo) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return r.fetch(ctx, `SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code)
}

func (r *postgresRepo) fetch(ctx context.Context, query, arg string) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT referred_id::text FROM user_referrals WHERE referrer_id = $1 ORDER BY created_at
`, u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	u.ReferredUsers = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		u.ReferredUsers = append(u.ReferredUsers, id)
	}
	return u, rows.Err()
}

func (r *postgresRepo) Redeem(ctx context.Context, in RedeemInput) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO user_referrals (referrer_id, referred_id) VALUES ($1, $2)
`, in.ReferrerID, in.ReferredID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
UPDATE users
SET loyalty_points = loyalty_points + $1,
    referral_points = referral_points + $1,
    total_earned = total_earned + $1
WHERE id = $2
`, in.ReferrerBonus, in.ReferrerID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
UPDATE users
SET loyalty_points = loyalty_points + $1,
    total_earned = total_earned + $1,
    referral_code_used = $2
WHERE id = $3 AND referral_code_used IS NULL
`, in.RefereeBonus, in.Code, in.ReferredID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Lost a race with another redemption by the same user.
		return ErrCodeAlreadyUsed
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) AddLoyaltyPoints(ctx context.Context, userID string, delta int) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users SET loyalty_points = GREATEST(0, loyalty_points + $1) WHERE id = $2
`, delta, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Phone,
		&u.Active,
		&u.LoyaltyPoints,
		&u.ReferralCode,
		&u.ReferralCodeUsed,
		&u.ReferralPoints,
		&u.TotalEarned,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
