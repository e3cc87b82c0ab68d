package handlers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/spidybot/mediagrab/internal/access"
	"github.com/spidybot/mediagrab/internal/config"
	"github.com/spidybot/mediagrab/internal/contextkeys"
	"github.com/spidybot/mediagrab/internal/downloader"
	"github.com/spidybot/mediagrab/internal/messages"
	"github.com/spidybot/mediagrab/internal/ratelimit"
	"github.com/spidybot/mediagrab/internal/scheduler"
	"github.com/spidybot/mediagrab/internal/sessions"
	"github.com/spidybot/mediagrab/types"
)

type Handlers struct {
	users    types.UserRegistry
	services types.ServiceCatalog
	cfg      types.ConfigStore
	access   *access.Resolver
	limiter  *ratelimit.Limiter
	sessions *sessions.Cache
	sched    *scheduler.Scheduler
	yt       *downloader.YouTube
	settings config.Settings

	startedAt time.Time
}

func NewHandlers(users types.UserRegistry, services types.ServiceCatalog, cfg types.ConfigStore,
	acc *access.Resolver, limiter *ratelimit.Limiter, cache *sessions.Cache,
	sched *scheduler.Scheduler, yt *downloader.YouTube, settings config.Settings) *Handlers {
	return &Handlers{
		users:     users,
		services:  services,
		cfg:       cfg,
		access:    acc,
		limiter:   limiter,
		sessions:  cache,
		sched:     sched,
		yt:        yt,
		settings:  settings,
		startedAt: time.Now(),
	}
}

func (bh *Handlers) MainHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := bh.getChatIDFromUpdate(update)
	messageType, _ := contextkeys.GetMessageType(ctx)

	userID, ok := contextkeys.GetUserID(ctx)
	if !ok {
		log.Printf("Error: user ID not found in context")
		return
	}

	switch messageType {
	case contextkeys.MessageTypeCommand:
		bh.HandleCommand(ctx, b, update, userID, chatID)
	case contextkeys.MessageTypeYouTubeLink:
		bh.HandleYouTubeLink(ctx, b, update, userID, chatID)
	case contextkeys.MessageTypeInstagramLink:
		bh.HandleInstagramLink(ctx, b, update, userID, chatID)
	case contextkeys.MessageTypeCallback:
		data, _ := contextkeys.GetCallbackData(ctx)
		if data == "" && update.CallbackQuery != nil {
			data = update.CallbackQuery.Data
		}
		bh.HandleCallback(ctx, b, update, userID, chatID, strings.TrimSpace(data))
	case contextkeys.MessageTypeText:
		if chatID != 0 {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      messages.TextHint(),
				ParseMode: messages.ParseModeHTML,
			})
		}
	default:
	}
}

// HandleCallback routes button presses by their data prefix.
func (bh *Handlers) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update, userID, chatID int64, data string) {
	switch {
	case strings.HasPrefix(data, "ytdl|"):
		bh.HandleDownloadCallback(ctx, b, update, userID, chatID, data)
	case strings.HasPrefix(data, "adm_"):
		bh.HandlePanelCallback(ctx, b, update, userID, chatID, data)
	case data == "check_fsub":
		bh.HandleFsubCheck(ctx, b, update, userID, chatID)
	case data == "cancel":
		bh.answerCallback(ctx, b, update, "", false)
		if update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil {
			b.DeleteMessage(ctx, &bot.DeleteMessageParams{
				ChatID:    chatID,
				MessageID: update.CallbackQuery.Message.Message.ID,
			})
		}
	default:
		bh.answerCallback(ctx, b, update, messages.InvalidCallback(), true)
	}
}

func (bh *Handlers) answerCallback(ctx context.Context, b *bot.Bot, update *models.Update, text string, alert bool) {
	if update.CallbackQuery == nil {
		return
	}
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		log.Printf("Error answering callback: %v", err)
	}
}

func (bh *Handlers) getChatIDFromUpdate(update *models.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil {
		m := update.CallbackQuery.Message
		if m.Message != nil {
			return m.Message.Chat.ID
		}
		if m.InaccessibleMessage != nil {
			return m.InaccessibleMessage.Chat.ID
		}
	}
	return 0
}

func (bh *Handlers) sendText(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if chatID == 0 {
		return
	}
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: messages.ParseModeHTML,
	})
	if err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
	}
}
