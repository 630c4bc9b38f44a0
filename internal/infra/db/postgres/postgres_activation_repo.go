package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-quest-bot/internal/domain"
	"telegram-quest-bot/internal/domain/model"
	"telegram-quest-bot/internal/domain/ports/repository"
)

var _ repository.ActivationRepository = (*activationRepo)(nil)

type activationRepo struct {
	pool *pgxpool.Pool
}

func NewActivationRepo(pool *pgxpool.Pool) *activationRepo {
	return &activationRepo{pool: pool}
}

// Insert records an activation. The composite UNIQUE (user_id, token_id)
// constraint is the only guard against double activation: a violation maps to
// domain.ErrAlreadyActivated and under concurrent inserts exactly one caller
// wins. The row timestamp is assigned by the database and scanned back.
func (r *activationRepo) Insert(ctx context.Context, tx repository.Tx, a *model.Activation) error {
	const q = `
INSERT INTO activations (id, user_id, token_id)
VALUES ($1,$2,$3)
RETURNING time;`
	row, err := pickRow(ctx, r.pool, tx, q, a.ID, a.UserID, a.TokenID)
	if err != nil {
		return err
	}
	if err := row.Scan(&a.Time); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyActivated
		}
		return fmt.Errorf("insert activation: %w", err)
	}
	return nil
}

func (r *activationRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM activations WHERE id=$1;`
	if _, err := execSQL(ctx, r.pool, tx, q, id); err != nil {
		return fmt.Errorf("delete activation: %w", err)
	}
	return nil
}

func (r *activationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Activation, error) {
	const q = `SELECT id, user_id, token_id, time FROM activations WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var a model.Activation
	if err := row.Scan(&a.ID, &a.UserID, &a.TokenID, &a.Time); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidTextRep(err) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &a, nil
}

func (r *activationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Activation, error) {
	const q = `SELECT id, user_id, token_id, time FROM activations WHERE user_id=$1;`
	return r.list(ctx, tx, q, userID)
}

func (r *activationRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Activation, error) {
	const q = `SELECT id, user_id, token_id, time FROM activations;`
	return r.list(ctx, tx, q)
}

func (r *activationRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM activations WHERE user_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count activations: %w", err)
	}
	return n, nil
}

// RankUsers ranks in SQL so the ledger never re-derives counts from a cached
// copy. The order among equal counts is unspecified.
func (r *activationRepo) RankUsers(ctx context.Context, tx repository.Tx, limit int) ([]*model.RankedUser, error) {
	if limit <= 0 {
		return nil, nil
	}
	const q = `
SELECT u.id, u.telegram_id, u.first_name, COALESCE(u.username,''), COUNT(a.id) AS cnt
  FROM activations a
  JOIN users u ON u.id = a.user_id
 GROUP BY u.id, u.telegram_id, u.first_name, u.username
 ORDER BY cnt DESC
 LIMIT $1;`
	rows, err := querySQL(ctx, r.pool, tx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("rank users: %w", err)
	}
	defer rows.Close()

	var ranked []*model.RankedUser
	for rows.Next() {
		var ru model.RankedUser
		if err := rows.Scan(&ru.User.ID, &ru.User.TelegramID, &ru.User.FirstName, &ru.User.Username, &ru.Activations); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		ranked = append(ranked, &ru)
	}
	return ranked, rows.Err()
}

func (r *activationRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Activation, error) {
	rows, err := querySQL(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list activations: %w", err)
	}
	defer rows.Close()

	var acts []*model.Activation
	for rows.Next() {
		var a model.Activation
		if err := rows.Scan(&a.ID, &a.UserID, &a.TokenID, &a.Time); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		acts = append(acts, &a)
	}
	return acts, rows.Err()
}
