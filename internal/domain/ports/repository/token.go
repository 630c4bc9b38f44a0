package repository

import (
	"context"

	"telegram-quest-bot/internal/domain/model"
)

// TokenRepository is the port for the token catalogue.
type TokenRepository interface {
	// Create inserts a new token. Returns domain.ErrAlreadyExists when a token
	// with the same name is already present (detected via the UNIQUE(name)
	// constraint, not a prior read).
	Create(ctx context.Context, tx Tx, t *model.Token) error
	// Save updates an existing token (validity toggle).
	Save(ctx context.Context, tx Tx, t *model.Token) error
	// Delete removes a token and, via FK cascade, its activations. Deleting an
	// unknown id is a no-op.
	Delete(ctx context.Context, tx Tx, id string) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Token, error)
	FindByName(ctx context.Context, tx Tx, name string) (*model.Token, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Token, error)
}
