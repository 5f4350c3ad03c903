package bot

import (
	"context"
	"sync"

	"crownium_bot/internal/model"
	"crownium_bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	BotToken    string `yaml:"botToken"`
	Debug       bool   `yaml:"debug"`
	PollTimeout int    `yaml:"pollTimeout"`
}

// Sender is the part of the Bot API used to deliver replies.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api         *tgbotapi.BotAPI
	sender      Sender
	router      *Router
	pollTimeout int
	wg          sync.WaitGroup
}

func NewBotAPI(cfg Config) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create bot API")
	}
	api.Debug = cfg.Debug

	return api, nil
}

func New(api *tgbotapi.BotAPI, router *Router, pollTimeout int) *Bot {
	return &Bot{
		api:         api,
		sender:      api,
		router:      router,
		pollTimeout: pollTimeout,
	}
}

// Run drops updates queued while the bot was offline and then long-polls
// until ctx is cancelled. Each update is handled on its own goroutine.
func (b *Bot) Run(ctx context.Context) error {
	log := logger.Named("bot")

	_, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true})
	if err != nil {
		return errors.Wrap(err, "failed to drop pending updates")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)

	log.Info("Bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			log.Info("Bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	log := logger.Named("bot")

	action, ok := ActionFromUpdate(update)
	if !ok {
		return
	}

	reply, err := b.router.Dispatch(ctx, action)
	if reply == nil {
		return
	}
	if err != nil {
		log.Warn("Replying with error notice", zap.String("action", action.Name))
	}

	msg := tgbotapi.NewMessage(action.ChatID, reply.Text)
	if reply.WithMenu {
		msg.ReplyMarkup = MainMenuKeyboard()
	}

	_, err = b.sender.Send(msg)
	if err != nil {
		log.Error("Failed to send reply",
			zap.String("action", action.Name),
			zap.Int64("chat_id", action.ChatID),
			zap.Error(err),
		)
	}
}

// ActionFromUpdate maps a text message to a router action. Updates without a
// message or sender are skipped.
func ActionFromUpdate(update tgbotapi.Update) (Action, bool) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return Action{}, false
	}

	action := Action{
		Name:   msg.Text,
		ChatID: msg.Chat.ID,
		Identity: model.Identity{
			TelegramID:   msg.From.ID,
			Username:     msg.From.UserName,
			FirstName:    msg.From.FirstName,
			LastName:     msg.From.LastName,
			LanguageCode: msg.From.LanguageCode,
		},
	}
	if msg.IsCommand() && msg.Command() == "start" {
		action.Name = ActionStart
		action.Payload = msg.CommandArguments()
	}

	return action, true
}
