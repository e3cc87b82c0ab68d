package middleware

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/spidybot/mediagrab/internal/contextkeys"
	"github.com/spidybot/mediagrab/types"
)

var (
	youtubeRe   = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/\S+`)
	instagramRe = regexp.MustCompile(`^(https?://)?(www\.)?(instagram\.com|instagr\.am)/\S+`)
)

type Middlewares struct {
	users types.UserRegistry
}

func NewMessageAnalyzer(users types.UserRegistry) *Middlewares {
	return &Middlewares{
		users: users,
	}
}

// RegisterContact upserts the sending user into the registry on every
// update so the registry always reflects the latest profile.
func (m *Middlewares) RegisterContact(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		var from *models.User

		switch {
		case update.Message != nil && update.Message.From != nil:
			from = update.Message.From
		case update.CallbackQuery != nil:
			from = &update.CallbackQuery.From
		default:
			return
		}

		if from == nil || from.ID == 0 {
			return
		}

		err := m.users.UpsertOnContact(types.Contact{
			ID:        from.ID,
			FirstName: from.FirstName,
			LastName:  from.LastName,
			Username:  from.Username,
			Language:  from.LanguageCode,
		})
		if err != nil {
			log.Printf("Error registering user %d: %v", from.ID, err)
		}

		next(contextkeys.WithUserID(ctx, from.ID), b, update)
	}
}

// Classify tags the update with a message type so the main handler can
// dispatch without re-parsing the update.
func (m *Middlewares) Classify(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.CallbackQuery != nil && update.CallbackQuery.Data != "" {
			ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeCallback)
			ctx = contextkeys.WithCallbackData(ctx, update.CallbackQuery.Data)
			next(ctx, b, update)
			return
		}

		if update.Message == nil {
			next(contextkeys.WithMessageType(ctx, contextkeys.MessageTypeUnknown), b, update)
			return
		}

		text := strings.TrimSpace(update.Message.Text)
		var msgType contextkeys.MessageType
		switch {
		case strings.HasPrefix(text, "/"):
			msgType = contextkeys.MessageTypeCommand
		case youtubeRe.MatchString(text):
			msgType = contextkeys.MessageTypeYouTubeLink
		case instagramRe.MatchString(text):
			msgType = contextkeys.MessageTypeInstagramLink
		case text != "":
			msgType = contextkeys.MessageTypeText
		default:
			msgType = contextkeys.MessageTypeUnknown
		}

		next(contextkeys.WithMessageType(ctx, msgType), b, update)
	}
}
