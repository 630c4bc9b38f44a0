package usecase

import (
	"context"
	"errors"

	"telegram-quest-bot/internal/domain"
	"telegram-quest-bot/internal/domain/model"
	"telegram-quest-bot/internal/domain/ports/adapter"
	"telegram-quest-bot/internal/infra/logging"
	"telegram-quest-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// CheckinStatus tags the outcome of a check-in submission. The transport layer
// maps each tag to user-facing text; this package never formats presentation
// strings.
type CheckinStatus string

const (
	StatusActivated        CheckinStatus = "activated"
	StatusAlreadyActivated CheckinStatus = "already_activated"
	StatusTokenNotFound    CheckinStatus = "token_not_found"
	StatusTokenInvalid     CheckinStatus = "token_invalid"
	StatusDecodeFailed     CheckinStatus = "decode_failed"
)

// CheckinResult is the tagged outcome of one submission. Activation and Total
// are set only for StatusActivated; User is set whenever the submitter was
// resolved (it is created on first contact even when the check-in fails).
type CheckinResult struct {
	Status     CheckinStatus
	User       *model.User
	Activation *model.Activation
	// Total is the submitter's running activation count after this success.
	Total int
}

// Compile-time check
var _ CheckinUseCase = (*checkinUC)(nil)

// CheckinUseCase orchestrates decode -> token lookup -> user resolve ->
// activation for one submission.
type CheckinUseCase interface {
	// SubmitPhoto decodes the photograph and activates the referenced token.
	SubmitPhoto(ctx context.Context, tgID int64, firstName, username string, imageBytes []byte) (*CheckinResult, error)
	// SubmitReference activates a token referenced explicitly by id, skipping
	// the decode step. Used by the /activate command; per the original flow it
	// does not reject deactivated tokens.
	SubmitReference(ctx context.Context, tgID int64, firstName, username, reference string) (*CheckinResult, error)
}

type checkinUC struct {
	decoder adapter.QRDecoder
	users   UserUseCase
	tokens  TokenUseCase
	ledger  LedgerUseCase
	log     *zerolog.Logger
}

func NewCheckinUseCase(decoder adapter.QRDecoder, users UserUseCase, tokens TokenUseCase, ledger LedgerUseCase, logger *zerolog.Logger) *checkinUC {
	return &checkinUC{
		decoder: decoder,
		users:   users,
		tokens:  tokens,
		ledger:  ledger,
		log:     logger,
	}
}

func (c *checkinUC) SubmitPhoto(ctx context.Context, tgID int64, firstName, username string, imageBytes []byte) (*CheckinResult, error) {
	defer logging.TraceDuration(c.log, "CheckinUC.SubmitPhoto")()

	user, err := c.users.RegisterOrFetch(ctx, tgID, firstName, username)
	if err != nil {
		return nil, err
	}

	texts, err := c.decoder.Decode(ctx, imageBytes)
	if err != nil {
		// A failed or cancelled decode is a retryable outcome for the user,
		// not a fault to escalate.
		c.log.Debug().Err(err).Int64("tg_id", tgID).Msg("decode did not complete")
		return c.outcome(StatusDecodeFailed, user), nil
	}
	if len(texts) == 0 || texts[0] == "" {
		return c.outcome(StatusDecodeFailed, user), nil
	}

	token, err := c.tokens.Get(ctx, texts[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.outcome(StatusTokenNotFound, user), nil
		}
		return nil, err
	}
	if !token.Valid {
		return c.outcome(StatusTokenInvalid, user), nil
	}

	return c.activate(ctx, user, token)
}

func (c *checkinUC) SubmitReference(ctx context.Context, tgID int64, firstName, username, reference string) (*CheckinResult, error) {
	defer logging.TraceDuration(c.log, "CheckinUC.SubmitReference")()

	user, err := c.users.RegisterOrFetch(ctx, tgID, firstName, username)
	if err != nil {
		return nil, err
	}

	token, err := c.tokens.Get(ctx, reference)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.outcome(StatusTokenNotFound, user), nil
		}
		return nil, err
	}

	return c.activate(ctx, user, token)
}

// activate attempts the insert and, on success, fetches the running count.
// A uniqueness conflict is the expected concurrency-control signal here.
func (c *checkinUC) activate(ctx context.Context, user *model.User, token *model.Token) (*CheckinResult, error) {
	act, err := c.ledger.Activate(ctx, user.ID, token.ID)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyActivated) {
			return c.outcome(StatusAlreadyActivated, user), nil
		}
		return nil, err
	}

	total, err := c.ledger.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	metrics.IncCheckin(string(StatusActivated))
	return &CheckinResult{Status: StatusActivated, User: user, Activation: act, Total: total}, nil
}

func (c *checkinUC) outcome(status CheckinStatus, user *model.User) *CheckinResult {
	metrics.IncCheckin(string(status))
	return &CheckinResult{Status: status, User: user}
}
