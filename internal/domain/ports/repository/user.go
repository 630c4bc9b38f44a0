package repository

import (
	"context"

	"telegram-quest-bot/internal/domain/model"
)

// UserRepository is the port for user records.
//
// telegram_id carries no storage-level uniqueness constraint; concurrent first
// contacts from the same Telegram identity can race into two rows. Callers are
// expected to look up before creating (see UserUseCase.RegisterOrFetch).
type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.User, error)
}
