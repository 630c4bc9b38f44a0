package usecase

import (
	"context"

	"telegram-quest-bot/internal/domain/model"
	"telegram-quest-bot/internal/domain/ports/repository"
	"telegram-quest-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ TokenUseCase = (*tokenUC)(nil)

// TokenUseCase manages the token catalogue. All operations are single
// independent transactions; nothing here spans two repository calls.
type TokenUseCase interface {
	// Create registers a new token. Returns domain.ErrAlreadyExists when the
	// name is taken.
	Create(ctx context.Context, name string) (*model.Token, error)
	Get(ctx context.Context, id string) (*model.Token, error)
	GetByName(ctx context.Context, name string) (*model.Token, error)
	// SetValidity toggles whether the token can be activated from photos.
	SetValidity(ctx context.Context, id string, valid bool) (*model.Token, error)
	// Delete removes the token and all its activations. Idempotent.
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*model.Token, error)
}

type tokenUC struct {
	tokens repository.TokenRepository
	log    *zerolog.Logger
}

func NewTokenUseCase(tokens repository.TokenRepository, logger *zerolog.Logger) *tokenUC {
	return &tokenUC{tokens: tokens, log: logger}
}

func (t *tokenUC) Create(ctx context.Context, name string) (*model.Token, error) {
	defer logging.TraceDuration(t.log, "TokenUC.Create")()

	token, err := model.NewToken("", name)
	if err != nil {
		return nil, err
	}
	if err := t.tokens.Create(ctx, repository.NoTX, token); err != nil {
		return nil, err
	}
	t.log.Info().Str("token_id", token.ID).Str("name", token.Name).Msg("created token")
	return token, nil
}

func (t *tokenUC) Get(ctx context.Context, id string) (*model.Token, error) {
	defer logging.TraceDuration(t.log, "TokenUC.Get")()
	return t.tokens.FindByID(ctx, repository.NoTX, id)
}

func (t *tokenUC) GetByName(ctx context.Context, name string) (*model.Token, error) {
	defer logging.TraceDuration(t.log, "TokenUC.GetByName")()
	return t.tokens.FindByName(ctx, repository.NoTX, name)
}

func (t *tokenUC) SetValidity(ctx context.Context, id string, valid bool) (*model.Token, error) {
	defer logging.TraceDuration(t.log, "TokenUC.SetValidity")()

	token, err := t.tokens.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	token.Valid = valid
	if err := t.tokens.Save(ctx, repository.NoTX, token); err != nil {
		return nil, err
	}
	t.log.Info().Str("token_id", token.ID).Bool("valid", valid).Msg("toggled token validity")
	return token, nil
}

func (t *tokenUC) Delete(ctx context.Context, id string) error {
	defer logging.TraceDuration(t.log, "TokenUC.Delete")()

	if err := t.tokens.Delete(ctx, repository.NoTX, id); err != nil {
		return err
	}
	t.log.Info().Str("token_id", id).Msg("deleted token")
	return nil
}

func (t *tokenUC) ListAll(ctx context.Context) ([]*model.Token, error) {
	defer logging.TraceDuration(t.log, "TokenUC.ListAll")()
	return t.tokens.ListAll(ctx, repository.NoTX)
}
