package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	red "telegram-quest-bot/internal/infra/redis"
)

// handlePhoto runs the check-in workflow for a submitted photograph.
func (r *RealTelegramBotAdapter) handlePhoto(ctx context.Context, message *tgbotapi.Message) error {
	if !message.Chat.IsPrivate() {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("private_only"))
	}

	allowed, err := r.rateLimiter.Allow(ctx, red.PhotoSubmitKey(message.From.ID), r.rlCfg.PhotosPerWindow, r.rlCfg.Window)
	if err != nil {
		r.log.Warn().Err(err).Int64("tg_id", message.From.ID).Msg("rate limit check failed")
	} else if !allowed {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("rate_limited"))
	}

	// Telegram orders renditions smallest first; the last one has the best
	// chance of a readable QR code.
	photo := message.Photo[len(message.Photo)-1]
	imageBytes, err := r.downloadPhoto(ctx, photo.FileID)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", message.From.ID).Msg("photo download failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("photo_download_failed"))
	}

	res, err := r.facade.SubmitPhoto(ctx, message.From.ID, message.From.FirstName, message.From.UserName, imageBytes)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", message.From.ID).Msg("photo check-in failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.checkinReply(res))
}
