package application

import (
	"context"

	"telegram-quest-bot/internal/domain/model"
	"telegram-quest-bot/internal/usecase"
)

// ---- small interfaces to decouple the facade from concrete usecase structs ----
// These describe the minimal surface that the facade needs. Using interfaces
// enables tests to pass in light-weight mocks.

type UserUseCaseIface interface {
	RegisterOrFetch(ctx context.Context, tgID int64, firstName, username string) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error)
	ExportCSV(ctx context.Context) ([]byte, error)
}

type TokenUseCaseIface interface {
	Create(ctx context.Context, name string) (*model.Token, error)
	Get(ctx context.Context, id string) (*model.Token, error)
	GetByName(ctx context.Context, name string) (*model.Token, error)
	SetValidity(ctx context.Context, id string, valid bool) (*model.Token, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*model.Token, error)
}

type LedgerUseCaseIface interface {
	Revoke(ctx context.Context, activationID string) error
	Get(ctx context.Context, activationID string) (*model.Activation, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Activation, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	RankUsers(ctx context.Context, limit int) ([]*model.RankedUser, error)
}

type CheckinUseCaseIface interface {
	SubmitPhoto(ctx context.Context, tgID int64, firstName, username string, imageBytes []byte) (*usecase.CheckinResult, error)
	SubmitReference(ctx context.Context, tgID int64, firstName, username, reference string) (*usecase.CheckinResult, error)
}
