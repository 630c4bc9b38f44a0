package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-quest-bot/internal/application"
	"telegram-quest-bot/internal/config"
	"telegram-quest-bot/internal/infra/i18n"
	red "telegram-quest-bot/internal/infra/redis"
	"telegram-quest-bot/internal/usecase"
)

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates to BotFacade.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	translator  *i18n.Translator
	rateLimiter *red.RateLimiter
	rlCfg       config.RateLimitConfig
	log         *zerolog.Logger

	adminIDsMap   map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc

	httpClient *http.Client
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	facade *application.BotFacade,
	translator *i18n.Translator,
	rateLimiter *red.RateLimiter,
	rlCfg config.RateLimitConfig,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if translator == nil {
		return nil, errors.New("translator is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		translator:    translator,
		rateLimiter:   rateLimiter,
		rlCfg:         rlCfg,
		log:           logger,
		adminIDsMap:   adminMap,
		updateWorkers: workers,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message
	if message == nil || message.From == nil {
		return nil
	}

	if len(message.Photo) > 0 {
		return r.handlePhoto(ctx, message)
	}

	if message.IsCommand() {
		if handler, ok := r.commandRoutes()[message.Command()]; ok {
			return handler(ctx, message)
		}
	}
	return nil
}

// SendMessage implements the adapter port. Replies use HTML formatting
// throughout, matching the locale templates.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(tgID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) sendDocument(chatID int64, name string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	_, err := r.bot.Send(doc)
	return err
}

// downloadPhoto fetches the raw bytes of the largest rendition of a photo.
func (r *RealTelegramBotAdapter) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	url, err := r.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download photo: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// checkinReply maps a tagged check-in outcome to the localized reply text.
func (r *RealTelegramBotAdapter) checkinReply(res *usecase.CheckinResult) string {
	switch res.Status {
	case usecase.StatusActivated:
		return r.translator.T("activated", res.Total)
	case usecase.StatusAlreadyActivated:
		return r.translator.T("already_activated")
	case usecase.StatusTokenInvalid:
		return r.translator.T("token_invalid")
	case usecase.StatusDecodeFailed:
		return r.translator.T("decode_failed")
	default:
		return r.translator.T("token_not_found")
	}
}
