package usecase

import (
	"context"

	"telegram-quest-bot/internal/domain/model"
	"telegram-quest-bot/internal/domain/ports/repository"
	"telegram-quest-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ LedgerUseCase = (*ledgerUC)(nil)

// LedgerUseCase owns the activation lifecycle and the uniqueness guarantee.
// No in-process lock guards the (user, token) pair; the repository surfaces
// the database constraint conflict as domain.ErrAlreadyActivated and callers
// treat it as an expected outcome.
type LedgerUseCase interface {
	Activate(ctx context.Context, userID, tokenID string) (*model.Activation, error)
	// Revoke deletes the record, returning domain.ErrNotFound when no such
	// activation exists.
	Revoke(ctx context.Context, activationID string) error
	Get(ctx context.Context, activationID string) (*model.Activation, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Activation, error)
	ListAll(ctx context.Context) ([]*model.Activation, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	// RankUsers returns the top limit users by activation count, descending.
	// Tie order among equal counts is unspecified. limit <= 0 yields nil.
	RankUsers(ctx context.Context, limit int) ([]*model.RankedUser, error)
}

type ledgerUC struct {
	activations repository.ActivationRepository
	log         *zerolog.Logger
}

func NewLedgerUseCase(activations repository.ActivationRepository, logger *zerolog.Logger) *ledgerUC {
	return &ledgerUC{activations: activations, log: logger}
}

func (l *ledgerUC) Activate(ctx context.Context, userID, tokenID string) (*model.Activation, error) {
	defer logging.TraceDuration(l.log, "LedgerUC.Activate")()

	act, err := model.NewActivation("", userID, tokenID)
	if err != nil {
		return nil, err
	}
	if err := l.activations.Insert(ctx, repository.NoTX, act); err != nil {
		return nil, err
	}
	l.log.Info().Str("token_id", tokenID).Str("user_id", userID).Msg("activated token")
	return act, nil
}

func (l *ledgerUC) Revoke(ctx context.Context, activationID string) error {
	defer logging.TraceDuration(l.log, "LedgerUC.Revoke")()

	// The repository delete is a no-op for unknown ids; look the record up
	// first so the admin reply can distinguish "revoked" from "was never there".
	if _, err := l.activations.FindByID(ctx, repository.NoTX, activationID); err != nil {
		return err
	}
	if err := l.activations.Delete(ctx, repository.NoTX, activationID); err != nil {
		return err
	}
	l.log.Info().Str("activation_id", activationID).Msg("revoked activation")
	return nil
}

func (l *ledgerUC) Get(ctx context.Context, activationID string) (*model.Activation, error) {
	defer logging.TraceDuration(l.log, "LedgerUC.Get")()
	return l.activations.FindByID(ctx, repository.NoTX, activationID)
}

func (l *ledgerUC) ListByUser(ctx context.Context, userID string) ([]*model.Activation, error) {
	defer logging.TraceDuration(l.log, "LedgerUC.ListByUser")()
	return l.activations.ListByUser(ctx, repository.NoTX, userID)
}

func (l *ledgerUC) ListAll(ctx context.Context) ([]*model.Activation, error) {
	defer logging.TraceDuration(l.log, "LedgerUC.ListAll")()
	return l.activations.ListAll(ctx, repository.NoTX)
}

func (l *ledgerUC) CountByUser(ctx context.Context, userID string) (int, error) {
	defer logging.TraceDuration(l.log, "LedgerUC.CountByUser")()
	return l.activations.CountByUser(ctx, repository.NoTX, userID)
}

func (l *ledgerUC) RankUsers(ctx context.Context, limit int) ([]*model.RankedUser, error) {
	defer logging.TraceDuration(l.log, "LedgerUC.RankUsers")()
	if limit <= 0 {
		return nil, nil
	}
	return l.activations.RankUsers(ctx, repository.NoTX, limit)
}
