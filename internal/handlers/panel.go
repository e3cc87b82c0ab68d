package handlers

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/spidybot/mediagrab/internal/messages"
)

// Panel section tokens. Callback data must stay under Telegram's
// 64-byte limit.
const (
	cbDashboard  = "adm_dash"
	cbUsers      = "adm_users"
	cbServices   = "adm_srv"
	cbSecurity   = "adm_sec"
	cbAdmins     = "adm_admins"
	cbMessages   = "adm_msg"
	cbTools      = "adm_tools"
	cbBackup     = "adm_backup"
	cbToolPing   = "adm_tool_ping"
	cbToolServer = "adm_tool_server"
	cbToolLogs   = "adm_tool_logs"
)

func adminKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "📊 Dashboard", CallbackData: cbDashboard},
				{Text: "👥 Users", CallbackData: cbUsers},
			},
			{
				{Text: "🧰 Services", CallbackData: cbServices},
				{Text: "🔐 Security", CallbackData: cbSecurity},
			},
			{
				{Text: "🛡 Admins", CallbackData: cbAdmins},
				{Text: "✉️ Messages", CallbackData: cbMessages},
			},
			{
				{Text: "🛠 Tools", CallbackData: cbTools},
				{Text: "💾 Backup", CallbackData: cbBackup},
			},
		},
	}
}

func toolsKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "🏓 Ping", CallbackData: cbToolPing},
				{Text: "🖥 Server", CallbackData: cbToolServer},
			},
			{
				{Text: "📜 Logs", CallbackData: cbToolLogs},
				{Text: "◀️ Back", CallbackData: cbDashboard},
			},
		},
	}
}

func (bh *Handlers) handleAdminPanel(ctx context.Context, b *bot.Bot, chatID int64) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        bh.panelDashboardText(),
		ParseMode:   messages.ParseModeHTML,
		ReplyMarkup: adminKeyboard(),
	})
	if err != nil {
		log.Printf("Error sending admin panel: %v", err)
	}
}

func (bh *Handlers) HandlePanelCallback(ctx context.Context, b *bot.Bot, update *models.Update, userID, chatID int64, data string) {
	if !bh.access.IsPrivileged(userID) {
		bh.answerCallback(ctx, b, update, messages.Blocked(), true)
		return
	}
	bh.answerCallback(ctx, b, update, "", false)

	if update.CallbackQuery == nil || update.CallbackQuery.Message.Message == nil {
		return
	}
	messageID := update.CallbackQuery.Message.Message.ID

	switch data {
	case cbBackup:
		bh.renderPanel(ctx, b, chatID, messageID, "💾 Creating backup...", adminKeyboard())
		bh.handleBackup(ctx, b, chatID)
		return
	case cbToolPing:
		bh.handlePing(ctx, b, chatID)
		return
	case cbToolServer:
		bh.handleServerInfo(ctx, b, chatID)
		return
	case cbToolLogs:
		bh.sendFile(ctx, b, chatID, filepath.Join(bh.settings.DataDir, "logs.txt"), "logs.txt")
		return
	case cbTools:
		bh.renderPanel(ctx, b, chatID, messageID, "<b>🛠 Tools</b>\n\nPick a diagnostic below.", toolsKeyboard())
		return
	}

	var text string
	switch data {
	case cbDashboard:
		text = bh.panelDashboardText()
	case cbUsers:
		text = bh.panelUsersText()
	case cbServices:
		text = bh.panelServicesText()
	case cbSecurity:
		text = bh.panelSecurityText()
	case cbAdmins:
		text = bh.panelAdminsText()
	case cbMessages:
		text = bh.panelMessagesText()
	default:
		text = bh.panelDashboardText()
	}

	bh.renderPanel(ctx, b, chatID, messageID, text, adminKeyboard())
}

// renderPanel re-renders the root panel layout in place.
func (bh *Handlers) renderPanel(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string, kb *models.InlineKeyboardMarkup) {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   messages.ParseModeHTML,
		ReplyMarkup: kb,
	})
	if err != nil {
		log.Printf("Error rendering panel section: %v", err)
	}
}

func (bh *Handlers) panelDashboardText() string {
	stats, err := bh.users.Stats()
	if err != nil {
		log.Printf("Error loading stats for panel: %v", err)
	}
	return fmt.Sprintf(
		"<b>⚙️ Admin Panel</b>\n\n"+
			"👥 Users: <b>%d</b> (new today: %d)\n"+
			"📥 Downloads: <b>%d</b> (%d MB)\n"+
			"🚫 Blocked: <b>%d</b>\n"+
			"⏱ Uptime: <b>%s</b>",
		stats.TotalUsers, stats.NewToday,
		stats.TotalDownloads, stats.TotalMB,
		stats.Blocked,
		time.Since(bh.startedAt).Round(time.Second))
}

func (bh *Handlers) panelUsersText() string {
	top, err := bh.users.TopByDownloads(5)
	if err != nil {
		log.Printf("Error loading top users for panel: %v", err)
	}
	var sb strings.Builder
	sb.WriteString("<b>👥 Users</b>\n\nTop downloaders:\n")
	if len(top) == 0 {
		sb.WriteString("<i>no downloads yet</i>\n")
	}
	for i, u := range top {
		fmt.Fprintf(&sb, "%d. <code>%s</code> — %d\n", i+1, u.ID, u.Downloads)
	}
	sb.WriteString("\nCommands: /users /user /topusers /export_users /block /unblock")
	return sb.String()
}

func (bh *Handlers) panelServicesText() string {
	all, err := bh.services.All()
	if err != nil {
		log.Printf("Error loading services for panel: %v", err)
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("<b>🧰 Services</b>\n\n")
	if len(keys) == 0 {
		sb.WriteString("<i>none configured</i>\n")
	}
	for _, k := range keys {
		s := all[k]
		fmt.Fprintf(&sb, "%s <b>%s</b> (<code>%s</code>)\n", s.Emoji, messages.Escape(s.Name), k)
	}
	sb.WriteString("\nCommands: /addservice /delservice /services")
	return sb.String()
}

func (bh *Handlers) panelSecurityText() string {
	stats, err := bh.users.Stats()
	if err != nil {
		log.Printf("Error loading stats for panel: %v", err)
	}
	channels := "<i>disabled</i>"
	if len(bh.settings.Channels) > 0 {
		channels = messages.Escape(strings.Join(bh.settings.Channels, ", "))
	}
	return fmt.Sprintf(
		"<b>🔐 Security</b>\n\n"+
			"🚫 Blocked users: <b>%d</b>\n"+
			"📢 Force-subscription: %s\n"+
			"⏳ Rate limit: 10 requests / 60s\n\n"+
			"Commands: /block /unblock",
		stats.Blocked, channels)
}

func (bh *Handlers) panelAdminsText() string {
	roles, err := bh.cfg.Roles()
	if err != nil {
		log.Printf("Error loading roles for panel: %v", err)
	}
	var sb strings.Builder
	sb.WriteString("<b>🛡 Admins</b>\n\nOwners:\n")
	for _, id := range bh.access.Owners() {
		fmt.Fprintf(&sb, "• <code>%d</code>\n", id)
	}
	sb.WriteString("\nGranted:\n")
	if len(roles) == 0 {
		sb.WriteString("<i>none</i>\n")
	}
	ids := make([]string, 0, len(roles))
	for id := range roles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(&sb, "• <code>%s</code> — %s\n", id, roles[id])
	}
	sb.WriteString("\nCommands: /addadmin /addmod /removeadmin /admins")
	return sb.String()
}

func (bh *Handlers) panelMessagesText() string {
	doc, err := bh.cfg.Document()
	if err != nil {
		log.Printf("Error loading config for panel: %v", err)
	}
	var sb strings.Builder
	sb.WriteString("<b>✉️ Messages</b>\n\nOverridable keys: <code>start</code>, <code>block</code>, <code>rate</code>\n\nActive overrides:\n")
	if len(doc.Messages) == 0 {
		sb.WriteString("<i>none</i>\n")
	}
	keys := make([]string, 0, len(doc.Messages))
	for k := range doc.Messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "• <code>%s</code>\n", k)
	}
	sb.WriteString("\nSet with: /setmsg key | text")
	return sb.String()
}
