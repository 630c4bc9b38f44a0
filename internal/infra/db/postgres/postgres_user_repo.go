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

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, telegram_id, first_name, username)
VALUES ($1,$2,$3,NULLIF($4,''))
ON CONFLICT (id) DO UPDATE SET
  first_name = EXCLUDED.first_name,
  username = EXCLUDED.username;`
	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.TelegramID, u.FirstName, u.Username)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `
SELECT id, telegram_id, first_name, COALESCE(username,'')
  FROM users WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	const q = `
SELECT id, telegram_id, first_name, COALESCE(username,'')
  FROM users WHERE telegram_id=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, tgID)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	const q = `SELECT id, telegram_id, first_name, COALESCE(username,'') FROM users;`
	rows, err := querySQL(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.Username); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidTextRep(err) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &u, nil
}
