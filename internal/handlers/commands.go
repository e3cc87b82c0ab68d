package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/spidybot/mediagrab/internal/messages"
)

// splitCommand separates "/cmd@botname arg arg" into the bare command
// and its argument tail.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	cmd := text
	args := ""
	if i := strings.IndexAny(text, " \n"); i >= 0 {
		cmd = text[:i]
		args = strings.TrimSpace(text[i+1:])
	}
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd, args
}

func (bh *Handlers) HandleCommand(ctx context.Context, b *bot.Bot, update *models.Update, userID, chatID int64) {
	if update.Message == nil {
		return
	}
	cmd, args := splitCommand(update.Message.Text)

	switch cmd {
	case "/start":
		bh.handleStart(ctx, b, update, chatID)
	case "/help":
		bh.sendText(ctx, b, chatID, messages.HelpText())
	case "/about":
		bh.sendText(ctx, b, chatID, messages.AboutText())
	default:
		if bh.access.IsPrivileged(userID) {
			bh.HandleAdminCommand(ctx, b, update, userID, chatID, cmd, args)
			return
		}
		bh.sendText(ctx, b, chatID, messages.UnknownCommand())
	}
}

func (bh *Handlers) handleStart(ctx context.Context, b *bot.Bot, update *models.Update, chatID int64) {
	firstName := ""
	if update.Message.From != nil {
		firstName = update.Message.From.FirstName
	}

	wish := messages.Greeting(time.Now())
	text := bh.cfg.Message(messages.KeyStart, messages.StartWelcome(firstName, wish))

	bh.sendText(ctx, b, chatID, text)
}
