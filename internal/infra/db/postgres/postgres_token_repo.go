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

var _ repository.TokenRepository = (*tokenRepo)(nil)

type tokenRepo struct {
	pool *pgxpool.Pool
}

func NewTokenRepo(pool *pgxpool.Pool) *tokenRepo {
	return &tokenRepo{pool: pool}
}

// Create inserts a new token. A name collision surfaces as
// domain.ErrAlreadyExists via the UNIQUE(name) constraint; there is no
// read-before-write.
func (r *tokenRepo) Create(ctx context.Context, tx repository.Tx, t *model.Token) error {
	const q = `INSERT INTO tokens (id, name, valid) VALUES ($1,$2,$3);`
	_, err := execSQL(ctx, r.pool, tx, q, t.ID, t.Name, t.Valid)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

func (r *tokenRepo) Save(ctx context.Context, tx repository.Tx, t *model.Token) error {
	const q = `UPDATE tokens SET name=$2, valid=$3 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, t.ID, t.Name, t.Valid)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete is idempotent: removing an unknown id is a no-op.
func (r *tokenRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM tokens WHERE id=$1;`
	if _, err := execSQL(ctx, r.pool, tx, q, id); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (r *tokenRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Token, error) {
	const q = `SELECT id, name, valid FROM tokens WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanToken(row)
}

func (r *tokenRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Token, error) {
	const q = `SELECT id, name, valid FROM tokens WHERE name=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, name)
	if err != nil {
		return nil, err
	}
	return scanToken(row)
}

func (r *tokenRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Token, error) {
	const q = `SELECT id, name, valid FROM tokens;`
	rows, err := querySQL(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*model.Token
	for rows.Next() {
		var t model.Token
		if err := rows.Scan(&t.ID, &t.Name, &t.Valid); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		tokens = append(tokens, &t)
	}
	return tokens, rows.Err()
}

func scanToken(row pgx.Row) (*model.Token, error) {
	var t model.Token
	if err := row.Scan(&t.ID, &t.Name, &t.Valid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidTextRep(err) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &t, nil
}
