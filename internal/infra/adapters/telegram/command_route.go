package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-quest-bot/internal/domain"
	"telegram-quest-bot/internal/domain/model"
	"telegram-quest-bot/internal/infra/metrics"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

const defaultTopLimit = 10

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":    r.handleStartCommand,
		"activate": r.handleActivateCommand,

		// These handlers are wrapped in our adminOnly middleware.
		"newtoken":         r.adminOnly(r.handleNewTokenCommand),
		"deltoken":         r.adminOnly(r.handleDelTokenCommand),
		"modtoken":         r.adminOnly(r.handleModTokenCommand),
		"checktoken":       r.adminOnly(r.handleCheckTokenCommand),
		"listtokens":       r.adminOnly(r.handleListTokensCommand),
		"checkuser":        r.adminOnly(r.handleCheckUserCommand),
		"topusers":         r.adminOnly(r.handleTopUsersCommand),
		"checkactivation":  r.adminOnly(r.handleCheckActivationCommand),
		"revokeactivation": r.adminOnly(r.handleRevokeActivationCommand),
		"alluserscsv":      r.adminOnly(r.handleAllUsersCSVCommand),
		"sendtext":         r.adminOnly(r.handleSendTextCommand),
		"sendtop":          r.adminOnly(r.handleSendTopCommand),
	}
}

// adminOnly silently drops commands from non-admin users so the admin
// command surface is not discoverable by probing.
func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if _, isAdmin := r.adminIDsMap[message.From.ID]; !isAdmin {
			metrics.IncAdminCommand("/"+message.Command(), "unauthorized")
			return nil
		}
		metrics.IncAdminCommand("/"+message.Command(), "authorized")
		return next(ctx, message)
	}
}

// handleStartCommand handles the /start command.
func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	if !message.Chat.IsPrivate() {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("private_only"))
	}

	user, err := r.facade.HandleStart(ctx, message.From.ID, message.From.FirstName, message.From.UserName)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", message.From.ID).Msg("start failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("welcome", user.FirstName))
}

// handleActivateCommand activates a token referenced by id, without a photo.
func (r *RealTelegramBotAdapter) handleActivateCommand(ctx context.Context, message *tgbotapi.Message) error {
	if !message.Chat.IsPrivate() {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("private_only"))
	}

	reference := strings.TrimSpace(message.CommandArguments())
	if reference == "" {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("token_not_found"))
	}

	res, err := r.facade.SubmitReference(ctx, message.From.ID, message.From.FirstName, message.From.UserName, reference)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", message.From.ID).Msg("reference activation failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.checkinReply(res))
}

func (r *RealTelegramBotAdapter) handleNewTokenCommand(ctx context.Context, message *tgbotapi.Message) error {
	name := strings.TrimSpace(message.CommandArguments())
	if name == "" {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_invalid_args"))
	}

	token, err := r.facade.CreateToken(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_token_exists"))
		}
		r.log.Error().Err(err).Str("name", name).Msg("token creation failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_token_created", token.ID))
}

func (r *RealTelegramBotAdapter) handleDelTokenCommand(ctx context.Context, message *tgbotapi.Message) error {
	id := strings.TrimSpace(message.CommandArguments())
	if id == "" {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_invalid_args"))
	}

	if err := r.facade.DeleteToken(ctx, id); err != nil {
		r.log.Error().Err(err).Str("token_id", id).Msg("token deletion failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_token_deleted", id))
}

// handleModTokenCommand flips token validity: /modtoken <id> activate|deactivate.
func (r *RealTelegramBotAdapter) handleModTokenCommand(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.Fields(message.CommandArguments())
	if len(args) != 2 {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_invalid_args"))
	}

	var valid bool
	switch args[1] {
	case "activate":
		valid = true
	case "deactivate":
		valid = false
	default:
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_invalid_args"))
	}

	token, err := r.facade.SetTokenValidity(ctx, args[0], valid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_token_not_found"))
		}
		r.log.Error().Err(err).Str("token_id", args[0]).Msg("token update failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.tokenInfo(token))
}

// handleCheckTokenCommand looks a token up by id, or by name with the "name"
// selector: /checktoken <id> or /checktoken name <name>.
func (r *RealTelegramBotAdapter) handleCheckTokenCommand(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.Fields(message.CommandArguments())

	var (
		token *model.Token
		err   error
	)
	switch {
	case len(args) == 1:
		token, err = r.facade.GetToken(ctx, args[0])
	case len(args) == 2 && args[0] == "name":
		token, err = r.facade.GetTokenByName(ctx, args[1])
	default:
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_invalid_args"))
	}

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_token_not_found"))
		}
		r.log.Error().Err(err).Msg("token lookup failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.tokenInfo(token))
}

func (r *RealTelegramBotAdapter) handleListTokensCommand(ctx context.Context, message *tgbotapi.Message) error {
	tokens, err := r.facade.ListTokens(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("token listing failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	if len(tokens) == 0 {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_no_tokens"))
	}

	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, r.tokenInfo(t))
	}
	return r.SendMessage(ctx, message.Chat.ID, strings.Join(parts, "\n\n"))
}

// handleCheckUserCommand inspects a user and their activations:
// /checkuser me | /checkuser id <uuid> | /checkuser tgid <telegram id>.
func (r *RealTelegramBotAdapter) handleCheckUserCommand(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.Fields(message.CommandArguments())

	var (
		user *model.User
		err  error
	)
	switch {
	case len(args) == 1 && args[0] == "me":
		user, err = r.facade.GetUserByTelegramID(ctx, message.From.ID)
	case len(args) == 2 && args[0] == "id":
		user, err = r.facade.GetUser(ctx, args[1])
	case len(args) == 2 && args[0] == "tgid":
		tgID, perr := strconv.ParseInt(args[1], 10, 64)
		if perr != nil {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_invalid_args"))
		}
		user, err = r.facade.GetUserByTelegramID(ctx, tgID)
	default:
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_invalid_args"))
	}

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_user_not_found"))
		}
		r.log.Error().Err(err).Msg("user lookup failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}

	activations, err := r.facade.ListUserActivations(ctx, user.ID)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", user.ID).Msg("activation listing failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "id: <code>%s</code>\n", user.ID)
	fmt.Fprintf(&b, "telegram_id: <code>%d</code>\n", user.TelegramID)
	fmt.Fprintf(&b, "first_name: %s\n", user.FirstName)
	fmt.Fprintf(&b, "username: %s\n", user.Username)
	fmt.Fprintf(&b, "activations: <b>%d</b>\n", len(activations))
	for _, a := range activations {
		fmt.Fprintf(&b, "- <code>%s</code> at %s\n", a.TokenID, a.Time.Format("2006-01-02 15:04:05"))
	}
	return r.SendMessage(ctx, message.Chat.ID, b.String())
}

func (r *RealTelegramBotAdapter) handleTopUsersCommand(ctx context.Context, message *tgbotapi.Message) error {
	limit := defaultTopLimit
	if arg := strings.TrimSpace(message.CommandArguments()); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_invalid_args"))
		}
		limit = n
	}

	ranked, err := r.facade.QueryLeaderboard(ctx, limit)
	if err != nil {
		r.log.Error().Err(err).Msg("leaderboard query failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}

	var b strings.Builder
	b.WriteString(r.translator.T("admin_top_header") + "\n")
	for i, ru := range ranked {
		fmt.Fprintf(&b, "%d. %s (<code>%d</code>) — <b>%d</b>\n", i+1, ru.FirstName, ru.TelegramID, ru.Activations)
	}
	return r.SendMessage(ctx, message.Chat.ID, b.String())
}

func (r *RealTelegramBotAdapter) handleCheckActivationCommand(ctx context.Context, message *tgbotapi.Message) error {
	id := strings.TrimSpace(message.CommandArguments())
	if id == "" {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_invalid_args"))
	}

	act, err := r.facade.GetActivation(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_activation_not_found"))
		}
		r.log.Error().Err(err).Str("activation_id", id).Msg("activation lookup failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_activation_info", act.ID, act.TokenID, act.UserID))
}

func (r *RealTelegramBotAdapter) handleRevokeActivationCommand(ctx context.Context, message *tgbotapi.Message) error {
	id := strings.TrimSpace(message.CommandArguments())
	if id == "" {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_invalid_args"))
	}

	if err := r.facade.RevokeActivation(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_activation_not_found"))
		}
		r.log.Error().Err(err).Str("activation_id", id).Msg("activation revoke failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_activation_revoked", id))
}

func (r *RealTelegramBotAdapter) handleAllUsersCSVCommand(ctx context.Context, message *tgbotapi.Message) error {
	data, err := r.facade.ExportUsersCSV(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("csv export failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.sendDocument(message.Chat.ID, "users.csv", data)
}

// handleSendTextCommand relays a message to one user: /sendtext <user id> <text>.
func (r *RealTelegramBotAdapter) handleSendTextCommand(ctx context.Context, message *tgbotapi.Message) error {
	parts := strings.SplitN(strings.TrimSpace(message.CommandArguments()), " ", 2)
	if len(parts) != 2 || parts[1] == "" {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_invalid_args"))
	}

	user, err := r.facade.GetUser(ctx, parts[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_user_not_found"))
		}
		r.log.Error().Err(err).Str("user_id", parts[0]).Msg("user lookup failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, user.TelegramID, parts[1])
}

// handleSendTopCommand relays a message to the top N users: /sendtop <n> <text>.
func (r *RealTelegramBotAdapter) handleSendTopCommand(ctx context.Context, message *tgbotapi.Message) error {
	parts := strings.SplitN(strings.TrimSpace(message.CommandArguments()), " ", 2)
	if len(parts) != 2 || parts[1] == "" {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_invalid_args"))
	}
	limit, err := strconv.Atoi(parts[0])
	if err != nil || limit <= 0 {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_invalid_args"))
	}

	ranked, err := r.facade.QueryLeaderboard(ctx, limit)
	if err != nil {
		r.log.Error().Err(err).Msg("leaderboard query failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}

	sent := 0
	for _, ru := range ranked {
		if err := r.SendMessage(ctx, ru.TelegramID, parts[1]); err != nil {
			r.log.Warn().Err(err).Int64("tg_id", ru.TelegramID).Msg("broadcast delivery failed")
			continue
		}
		sent++
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_sent_to", sent))
}

func (r *RealTelegramBotAdapter) tokenInfo(t *model.Token) string {
	return r.translator.T("admin_token_info", t.ID, t.Name, t.Valid)
}
