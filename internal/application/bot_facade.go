package application

import (
	"context"
	"fmt"

	"telegram-quest-bot/internal/domain/model"
	"telegram-quest-bot/internal/usecase"
)

// BotFacade composes usecases into the high-level operations the transport
// layers invoke. It returns domain values and tagged results, never
// user-facing text; formatting lives with the adapters.
type BotFacade struct {
	UserUC    UserUseCaseIface
	TokenUC   TokenUseCaseIface
	LedgerUC  LedgerUseCaseIface
	CheckinUC CheckinUseCaseIface
}

func NewBotFacade(userUC UserUseCaseIface, tokenUC TokenUseCaseIface, ledgerUC LedgerUseCaseIface, checkinUC CheckinUseCaseIface) *BotFacade {
	return &BotFacade{
		UserUC:    userUC,
		TokenUC:   tokenUC,
		LedgerUC:  ledgerUC,
		CheckinUC: checkinUC,
	}
}

// HandleStart registers or fetches the user on first contact.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, firstName, username string) (*model.User, error) {
	if b.UserUC == nil {
		return nil, fmt.Errorf("user usecase not available")
	}
	return b.UserUC.RegisterOrFetch(ctx, tgID, firstName, username)
}

// SubmitPhoto runs the full decode-and-activate workflow for a photograph.
func (b *BotFacade) SubmitPhoto(ctx context.Context, tgID int64, firstName, username string, imageBytes []byte) (*usecase.CheckinResult, error) {
	if b.CheckinUC == nil {
		return nil, fmt.Errorf("checkin usecase not available")
	}
	return b.CheckinUC.SubmitPhoto(ctx, tgID, firstName, username, imageBytes)
}

// SubmitReference activates a token referenced explicitly, bypassing decode.
func (b *BotFacade) SubmitReference(ctx context.Context, tgID int64, firstName, username, reference string) (*usecase.CheckinResult, error) {
	if b.CheckinUC == nil {
		return nil, fmt.Errorf("checkin usecase not available")
	}
	return b.CheckinUC.SubmitReference(ctx, tgID, firstName, username, reference)
}

func (b *BotFacade) CreateToken(ctx context.Context, name string) (*model.Token, error) {
	return b.TokenUC.Create(ctx, name)
}

func (b *BotFacade) DeleteToken(ctx context.Context, id string) error {
	return b.TokenUC.Delete(ctx, id)
}

func (b *BotFacade) SetTokenValidity(ctx context.Context, id string, valid bool) (*model.Token, error) {
	return b.TokenUC.SetValidity(ctx, id, valid)
}

func (b *BotFacade) GetToken(ctx context.Context, id string) (*model.Token, error) {
	return b.TokenUC.Get(ctx, id)
}

func (b *BotFacade) GetTokenByName(ctx context.Context, name string) (*model.Token, error) {
	return b.TokenUC.GetByName(ctx, name)
}

func (b *BotFacade) ListTokens(ctx context.Context) ([]*model.Token, error) {
	return b.TokenUC.ListAll(ctx)
}

func (b *BotFacade) GetUser(ctx context.Context, id string) (*model.User, error) {
	return b.UserUC.Get(ctx, id)
}

func (b *BotFacade) GetUserByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	return b.UserUC.GetByTelegramID(ctx, tgID)
}

func (b *BotFacade) ListUserActivations(ctx context.Context, userID string) ([]*model.Activation, error) {
	return b.LedgerUC.ListByUser(ctx, userID)
}

func (b *BotFacade) GetActivation(ctx context.Context, id string) (*model.Activation, error) {
	return b.LedgerUC.Get(ctx, id)
}

func (b *BotFacade) RevokeActivation(ctx context.Context, id string) error {
	return b.LedgerUC.Revoke(ctx, id)
}

// QueryLeaderboard returns the top limit users by activation count.
func (b *BotFacade) QueryLeaderboard(ctx context.Context, limit int) ([]*model.RankedUser, error) {
	return b.LedgerUC.RankUsers(ctx, limit)
}

// ExportUsersCSV renders the unescaped users export consumed by admin tooling.
func (b *BotFacade) ExportUsersCSV(ctx context.Context) ([]byte, error) {
	return b.UserUC.ExportCSV(ctx)
}
