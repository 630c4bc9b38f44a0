package repository

import (
	"context"

	"telegram-quest-bot/internal/domain/model"
)

// ActivationRepository is the port for the activation ledger.
type ActivationRepository interface {
	// Insert records an activation with a database-assigned timestamp and
	// fills it back into a.Time. Returns domain.ErrAlreadyActivated when the
	// (user_id, token_id) pair already has a record; that conflict comes from
	// the composite unique constraint and is the ledger's only race guard.
	Insert(ctx context.Context, tx Tx, a *model.Activation) error
	// Delete removes an activation unconditionally.
	Delete(ctx context.Context, tx Tx, id string) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Activation, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Activation, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Activation, error)
	CountByUser(ctx context.Context, tx Tx, userID string) (int, error)
	// RankUsers returns users with at least one activation ordered by
	// activation count descending, at most limit entries. The order among
	// equal counts is whatever the database yields.
	RankUsers(ctx context.Context, tx Tx, limit int) ([]*model.RankedUser, error)
}
