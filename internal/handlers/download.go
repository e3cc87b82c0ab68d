package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"github.com/spidybot/mediagrab/internal/messages"
	"github.com/spidybot/mediagrab/internal/scheduler"
)

// maxCallbackData is Telegram's hard limit on callback payload size.
const maxCallbackData = 64

// gateCheck runs the blocked and rate-limit checks in order. A blocked
// user is rejected before the limiter is touched, so the rejection
// consumes no quota. Returns the rejection text when not ok.
func (bh *Handlers) gateCheck(userID int64) (string, bool) {
	if bh.users.IsBlocked(userID) {
		return bh.cfg.Message(messages.KeyBlock, messages.Blocked()), false
	}
	if !bh.limiter.Allow(userID) {
		return bh.cfg.Message(messages.KeyRate, messages.RateLimited()), false
	}
	return "", true
}

// contentGate runs the blocked, rate-limit and force-subscription
// checks in that order. Returns false when the request must not
// proceed; the gate has already replied to the user.
func (bh *Handlers) contentGate(ctx context.Context, b *bot.Bot, update *models.Update, userID, chatID int64) bool {
	if reject, ok := bh.gateCheck(userID); !ok {
		bh.sendText(ctx, b, chatID, reject)
		return false
	}
	if !bh.requireSubscription(ctx, b, update, userID, chatID) {
		return false
	}
	return true
}

func (bh *Handlers) HandleYouTubeLink(ctx context.Context, b *bot.Bot, update *models.Update, userID, chatID int64) {
	if !bh.contentGate(ctx, b, update, userID, chatID) {
		return
	}
	url := strings.TrimSpace(update.Message.Text)

	status, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      messages.FetchingFormats(),
		ParseMode: messages.ParseModeHTML,
	})
	if err != nil {
		log.Printf("Error sending status message: %v", err)
		return
	}

	meta, err := bh.yt.Probe(ctx, url)
	if err != nil {
		log.Printf("Error fetching formats for %s: %v", url, err)
		bh.editText(ctx, b, chatID, status.ID, messages.ErrorFetchingFormats(err))
		return
	}
	if len(meta.Formats) == 0 {
		bh.editText(ctx, b, chatID, status.ID, messages.NoFormats())
		return
	}

	token := bh.sessions.Open(url)

	rows := make([][]models.InlineKeyboardButton, 0, len(meta.Formats)+2)
	for _, f := range meta.Formats {
		data := fmt.Sprintf("ytdl|%s|%d|video", token, f.Itag)
		if len(data) > maxCallbackData {
			continue
		}
		label := fmt.Sprintf("🎬 %s - mp4 - %s", f.Quality, messages.HumanBytes(f.Size))
		rows = append(rows, []models.InlineKeyboardButton{{Text: label, CallbackData: data}})
	}
	rows = append(rows, []models.InlineKeyboardButton{
		{Text: "🎵 Audio MP3 (Best)", CallbackData: fmt.Sprintf("ytdl|%s|0|audio", token)},
	})
	rows = append(rows, []models.InlineKeyboardButton{
		{Text: "❌ Cancel", CallbackData: "cancel"},
	})

	_, err = b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   status.ID,
		Text:        messages.ChooseFormat(meta.Title),
		ParseMode:   messages.ParseModeHTML,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: rows},
	})
	if err != nil {
		log.Printf("Error presenting formats: %v", err)
	}
}

func (bh *Handlers) HandleInstagramLink(ctx context.Context, b *bot.Bot, update *models.Update, userID, chatID int64) {
	if !bh.contentGate(ctx, b, update, userID, chatID) {
		return
	}
	url := strings.TrimSpace(update.Message.Text)

	status, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      messages.FetchingInstagram(),
		ParseMode: messages.ParseModeHTML,
	})
	if err != nil {
		log.Printf("Error sending status message: %v", err)
		return
	}

	// Instagram has no format negotiation, the job goes straight to
	// the queue under a fresh token.
	token := uuid.New().String()[:8]

	position := bh.sched.Enqueue(&scheduler.Job{
		Token:     token,
		URL:       url,
		Kind:      scheduler.JobInstagram,
		ChatID:    chatID,
		MessageID: status.ID,
		UserID:    userID,
	})
	if position > 0 {
		bh.editText(ctx, b, chatID, status.ID, messages.Queued(position))
	}
}

// HandleDownloadCallback handles "ytdl|<token>|<itag>|<mode>" button
// presses, claiming the single-use session token.
func (bh *Handlers) HandleDownloadCallback(ctx context.Context, b *bot.Bot, update *models.Update, userID, chatID int64, data string) {
	if reject, ok := bh.gateCheck(userID); !ok {
		bh.answerCallback(ctx, b, update, reject, true)
		return
	}

	token, itag, mode, ok := parseDownloadCallback(data)
	if !ok {
		bh.answerCallback(ctx, b, update, messages.InvalidCallback(), true)
		return
	}

	url, ok := bh.sessions.Resolve(token)
	if !ok {
		bh.answerCallback(ctx, b, update, messages.SessionExpired(), true)
		return
	}
	bh.answerCallback(ctx, b, update, "", false)

	messageID := 0
	if update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil {
		messageID = update.CallbackQuery.Message.Message.ID
	}

	kind := scheduler.JobVideo
	if mode == "audio" {
		kind = scheduler.JobAudio
	}

	position := bh.sched.Enqueue(&scheduler.Job{
		Token:     token,
		URL:       url,
		Kind:      kind,
		Itag:      itag,
		ChatID:    chatID,
		MessageID: messageID,
		UserID:    userID,
	})
	if messageID == 0 {
		return
	}
	if position > 0 {
		bh.editText(ctx, b, chatID, messageID, messages.Queued(position))
	} else {
		bh.editText(ctx, b, chatID, messageID, messages.Downloading())
	}
}

func parseDownloadCallback(data string) (token string, itag int, mode string, ok bool) {
	parts := strings.Split(data, "|")
	if len(parts) != 4 || parts[0] != "ytdl" {
		return "", 0, "", false
	}
	token = parts[1]
	mode = parts[3]
	if token == "" || (mode != "video" && mode != "audio") {
		return "", 0, "", false
	}
	itag, err := strconv.Atoi(parts[2])
	if err != nil || itag < 0 {
		return "", 0, "", false
	}
	return token, itag, mode, true
}

func (bh *Handlers) editText(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string) {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: messages.ParseModeHTML,
	})
	if err != nil {
		log.Printf("Error editing message chat=%d msg=%d: %v", chatID, messageID, err)
	}
}
