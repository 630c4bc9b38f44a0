package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"telegram-quest-bot/internal/domain"
	"telegram-quest-bot/internal/domain/model"
	"telegram-quest-bot/internal/domain/ports/repository"
	"telegram-quest-bot/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes user-related operations used by bot/admin flows.
type UserUseCase interface {
	// RegisterOrFetch returns the user for the Telegram identity, creating it
	// on first contact and refreshing first name / username otherwise.
	RegisterOrFetch(ctx context.Context, tgID int64, firstName, username string) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error)
	ListAll(ctx context.Context) ([]*model.User, error)
	// ExportCSV renders all users as `id,telegram_id,first_name,username`
	// rows. Fields are written verbatim, without escaping; the format is an
	// external contract consumed by existing admin tooling.
	ExportCSV(ctx context.Context) ([]byte, error)
}

type userUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, tm: tm, log: logger}
}

func (u *userUC) RegisterOrFetch(ctx context.Context, tgID int64, firstName, username string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.RegisterOrFetch")()

	var user *model.User
	// Look-then-create inside one serializable transaction. telegram_id has no
	// unique constraint, so this narrows the first-contact race but cannot
	// close it across processes.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByTelegramID(ctx, tx, tgID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if usr != nil {
			changed := false
			if firstName != "" && usr.FirstName != firstName {
				usr.FirstName = firstName
				changed = true
			}
			if usr.Username != username {
				usr.Username = username
				changed = true
			}
			if changed {
				if err := u.users.Save(ctx, tx, usr); err != nil {
					return err
				}
			}
			user = usr
			return nil
		}

		nu, err := model.NewUser("", tgID, firstName, username)
		if err != nil {
			return err
		}
		if err := u.users.Save(ctx, tx, nu); err != nil {
			return err
		}
		u.log.Info().Str("user_id", nu.ID).Int64("tg_id", tgID).Msg("registered user")
		user = nu
		return nil
	})

	return user, err
}

func (u *userUC) Get(ctx context.Context, id string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Get")()
	return u.users.FindByID(ctx, repository.NoTX, id)
}

func (u *userUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.GetByTelegramID")()
	return u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
}

func (u *userUC) ListAll(ctx context.Context) ([]*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.ListAll")()
	return u.users.ListAll(ctx, repository.NoTX)
}

func (u *userUC) ExportCSV(ctx context.Context) ([]byte, error) {
	defer logging.TraceDuration(u.log, "UserUC.ExportCSV")()

	users, err := u.users.ListAll(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("id,telegram_id,first_name,username\n")
	for _, usr := range users {
		sb.WriteString(usr.ID)
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatInt(usr.TelegramID, 10))
		sb.WriteByte(',')
		sb.WriteString(usr.FirstName)
		sb.WriteByte(',')
		sb.WriteString(usr.Username)
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}
