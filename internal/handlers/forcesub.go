package handlers

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/spidybot/mediagrab/internal/messages"
)

// requireSubscription verifies membership in every configured channel.
// Returns true when the user may proceed; otherwise it has already sent
// the join prompt.
func (bh *Handlers) requireSubscription(ctx context.Context, b *bot.Bot, update *models.Update, userID, chatID int64) bool {
	if len(bh.settings.Channels) == 0 {
		return true
	}

	missing := bh.missingChannels(ctx, b, userID)
	if len(missing) == 0 {
		return true
	}

	rows := make([][]models.InlineKeyboardButton, 0, len(missing)+1)
	for _, ch := range missing {
		link := bh.channelLink(ctx, b, ch)
		if link == "" {
			continue
		}
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: "📢 Join " + strings.TrimPrefix(ch, "@"), URL: link},
		})
	}
	rows = append(rows, []models.InlineKeyboardButton{
		{Text: "✅ I JOINED", CallbackData: "check_fsub"},
	})

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        messages.JoinPrompt(missing),
		ParseMode:   messages.ParseModeHTML,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: rows},
	})
	if err != nil {
		log.Printf("Error sending join prompt: %v", err)
	}
	return false
}

// missingChannels returns the channels the user is not a member of.
// A failed membership lookup counts as missing.
func (bh *Handlers) missingChannels(ctx context.Context, b *bot.Bot, userID int64) []string {
	missing := make([]string, 0)
	for _, ch := range bh.settings.Channels {
		member, err := b.GetChatMember(ctx, &bot.GetChatMemberParams{
			ChatID: channelChatID(ch),
			UserID: userID,
		})
		if err != nil {
			log.Printf("Membership check failed for %s user %d: %v", ch, userID, err)
			missing = append(missing, ch)
			continue
		}
		if member.Type == models.ChatMemberTypeLeft || member.Type == models.ChatMemberTypeBanned {
			missing = append(missing, ch)
		}
	}
	return missing
}

// channelChatID maps a configured channel to the ChatID the API
// accepts: "@name" stays a string, "-100…" becomes an int64.
func channelChatID(ch string) any {
	if strings.HasPrefix(ch, "@") {
		return ch
	}
	if id, err := strconv.ParseInt(ch, 10, 64); err == nil {
		return id
	}
	return "@" + ch
}

func (bh *Handlers) channelLink(ctx context.Context, b *bot.Bot, ch string) string {
	if strings.HasPrefix(ch, "@") {
		return "https://t.me/" + strings.TrimPrefix(ch, "@")
	}
	if _, err := strconv.ParseInt(ch, 10, 64); err != nil {
		return "https://t.me/" + ch
	}
	// Private channels have no public handle, mint an invite link.
	link, err := b.CreateChatInviteLink(ctx, &bot.CreateChatInviteLinkParams{
		ChatID: channelChatID(ch),
	})
	if err != nil {
		log.Printf("Error creating invite link for %s: %v", ch, err)
		return ""
	}
	return link.InviteLink
}

// HandleFsubCheck re-verifies membership after the user pressed the
// "I JOINED" button.
func (bh *Handlers) HandleFsubCheck(ctx context.Context, b *bot.Bot, update *models.Update, userID, chatID int64) {
	missing := bh.missingChannels(ctx, b, userID)
	if len(missing) > 0 {
		bh.answerCallback(ctx, b, update, "❌ You have not joined all channels yet.", true)
		return
	}

	bh.answerCallback(ctx, b, update, "", false)
	if update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil {
		bh.editText(ctx, b, chatID, update.CallbackQuery.Message.Message.ID,
			messages.JoinVerified(bh.settings.Channels))
	}
}
