package handlers

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/spidybot/mediagrab/internal/messages"
	"github.com/spidybot/mediagrab/store"
	"github.com/spidybot/mediagrab/types"
)

func (bh *Handlers) HandleAdminCommand(ctx context.Context, b *bot.Bot, update *models.Update, userID, chatID int64, cmd, args string) {
	switch cmd {
	case "/admin":
		bh.handleAdminPanel(ctx, b, chatID)
	case "/admins":
		bh.handleAdminList(ctx, b, chatID)
	case "/addadmin":
		bh.handleGrant(ctx, b, userID, chatID, args, types.RoleAdmin)
	case "/addmod":
		bh.handleGrant(ctx, b, userID, chatID, args, types.RoleMod)
	case "/removeadmin":
		bh.handleRevoke(ctx, b, userID, chatID, args)
	case "/stats":
		bh.handleStats(ctx, b, chatID)
	case "/users":
		bh.handleUserList(ctx, b, chatID)
	case "/user":
		bh.handleUserLookup(ctx, b, update, chatID, args)
	case "/topusers":
		bh.handleTopUsers(ctx, b, chatID)
	case "/export_users":
		bh.sendFile(ctx, b, chatID, bh.users.Path(), "users.json")
	case "/block":
		bh.handleSetBlocked(ctx, b, chatID, args, true)
	case "/unblock":
		bh.handleSetBlocked(ctx, b, chatID, args, false)
	case "/addservice":
		bh.handleAddService(ctx, b, chatID, args)
	case "/services":
		bh.handleServiceList(ctx, b, chatID)
	case "/delservice":
		bh.handleDelService(ctx, b, chatID, args)
	case "/setmsg":
		bh.handleSetMessage(ctx, b, userID, chatID, args)
	case "/ping":
		bh.handlePing(ctx, b, chatID)
	case "/server":
		bh.handleServerInfo(ctx, b, chatID)
	case "/logs":
		bh.sendFile(ctx, b, chatID, filepath.Join(bh.settings.DataDir, "logs.txt"), "logs.txt")
	case "/backupnow":
		bh.handleBackup(ctx, b, chatID)
	default:
		bh.sendText(ctx, b, chatID, messages.UnknownCommand())
	}
}

func (bh *Handlers) handleAdminList(ctx context.Context, b *bot.Bot, chatID int64) {
	var sb strings.Builder
	sb.WriteString("<b>👑 Owners</b>\n")
	for _, id := range bh.access.Owners() {
		fmt.Fprintf(&sb, "• <code>%d</code>\n", id)
	}

	roles, err := bh.cfg.Roles()
	if err != nil {
		log.Printf("Error loading roles: %v", err)
	}
	ids := make([]string, 0, len(roles))
	for id := range roles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sb.WriteString("\n<b>🛡 Granted roles</b>\n")
	if len(ids) == 0 {
		sb.WriteString("<i>none</i>\n")
	}
	for _, id := range ids {
		fmt.Fprintf(&sb, "• <code>%s</code> — %s\n", id, roles[id])
	}

	bh.sendText(ctx, b, chatID, sb.String())
}

func (bh *Handlers) handleGrant(ctx context.Context, b *bot.Bot, userID, chatID int64, args string, role types.Role) {
	if !bh.access.IsOwner(userID) {
		bh.sendText(ctx, b, chatID, "⛔ Only owners can manage roles.")
		return
	}
	target, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		bh.sendText(ctx, b, chatID, "Usage: /addadmin &lt;user_id&gt; or /addmod &lt;user_id&gt;")
		return
	}
	if err := bh.access.Grant(target, role); err != nil {
		log.Printf("Error granting role: %v", err)
		bh.sendText(ctx, b, chatID, "❌ Failed to save role.")
		return
	}
	bh.sendText(ctx, b, chatID, fmt.Sprintf("✅ User <code>%d</code> is now <b>%s</b>.", target, role))
}

func (bh *Handlers) handleRevoke(ctx context.Context, b *bot.Bot, userID, chatID int64, args string) {
	if !bh.access.IsOwner(userID) {
		bh.sendText(ctx, b, chatID, "⛔ Only owners can manage roles.")
		return
	}
	target, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		bh.sendText(ctx, b, chatID, "Usage: /removeadmin &lt;user_id&gt;")
		return
	}
	if bh.access.IsOwner(target) {
		bh.sendText(ctx, b, chatID, "⛔ Owners cannot be removed.")
		return
	}
	if err := bh.access.Revoke(target); err != nil {
		log.Printf("Error revoking role: %v", err)
		bh.sendText(ctx, b, chatID, "❌ Failed to save role.")
		return
	}
	bh.sendText(ctx, b, chatID, fmt.Sprintf("✅ User <code>%d</code> has no role now.", target))
}

func (bh *Handlers) handleStats(ctx context.Context, b *bot.Bot, chatID int64) {
	stats, err := bh.users.Stats()
	if err != nil {
		log.Printf("Error loading stats: %v", err)
		bh.sendText(ctx, b, chatID, "❌ Failed to load stats.")
		return
	}
	text := fmt.Sprintf(
		"<b>📊 Stats</b>\n\n"+
			"👥 Users: <b>%d</b>\n"+
			"🆕 New today: <b>%d</b>\n"+
			"🚫 Blocked: <b>%d</b>\n"+
			"📥 Downloads: <b>%d</b>\n"+
			"💾 Transferred: <b>%d MB</b>",
		stats.TotalUsers, stats.NewToday, stats.Blocked, stats.TotalDownloads, stats.TotalMB)
	bh.sendText(ctx, b, chatID, text)
}

func (bh *Handlers) handleUserList(ctx context.Context, b *bot.Bot, chatID int64) {
	all, err := bh.users.All()
	if err != nil {
		log.Printf("Error loading users: %v", err)
		bh.sendText(ctx, b, chatID, "❌ Failed to load users.")
		return
	}

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>👥 Users (%d)</b>\n\n", len(ids))
	shown := 0
	for _, id := range ids {
		if shown >= 25 {
			fmt.Fprintf(&sb, "\n<i>… and %d more, use /export_users</i>", len(ids)-shown)
			break
		}
		u := all[id]
		flag := ""
		if u.Blocked {
			flag = " 🚫"
		}
		fmt.Fprintf(&sb, "• <code>%s</code> %s%s\n", id, messages.Escape(u.FirstName), flag)
		shown++
	}
	bh.sendText(ctx, b, chatID, sb.String())
}

func (bh *Handlers) handleUserLookup(ctx context.Context, b *bot.Bot, update *models.Update, chatID int64, args string) {
	target, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		if update.Message != nil && update.Message.ReplyToMessage != nil && update.Message.ReplyToMessage.From != nil {
			target = update.Message.ReplyToMessage.From.ID
		} else {
			bh.sendText(ctx, b, chatID, "Usage: /user &lt;user_id&gt; or reply to a message with /user")
			return
		}
	}

	u, ok := bh.users.Get(target)
	if !ok {
		bh.sendText(ctx, b, chatID, fmt.Sprintf("❌ User <code>%d</code> not found.", target))
		return
	}

	blocked := "no"
	if u.Blocked {
		blocked = "yes 🚫"
	}
	text := fmt.Sprintf(
		"<b>👤 User <code>%d</code></b>\n\n"+
			"Name: %s %s\n"+
			"Username: @%s\n"+
			"Language: %s\n"+
			"Role: %s\n"+
			"Joined: %s\n"+
			"Last active: %s\n"+
			"Downloads: %d (%d MB)\n"+
			"Blocked: %s",
		target,
		messages.Escape(u.FirstName), messages.Escape(u.LastName),
		messages.Escape(u.Username), u.Language,
		bh.access.Role(target),
		u.JoinedAt, u.LastActive,
		u.TotalDownloads, u.TotalMB, blocked)
	bh.sendText(ctx, b, chatID, text)
}

func (bh *Handlers) handleTopUsers(ctx context.Context, b *bot.Bot, chatID int64) {
	top, err := bh.users.TopByDownloads(10)
	if err != nil {
		log.Printf("Error loading top users: %v", err)
		bh.sendText(ctx, b, chatID, "❌ Failed to load users.")
		return
	}
	if len(top) == 0 {
		bh.sendText(ctx, b, chatID, "<i>No downloads yet.</i>")
		return
	}

	var sb strings.Builder
	sb.WriteString("<b>🏆 Top downloaders</b>\n\n")
	for i, u := range top {
		fmt.Fprintf(&sb, "%d. <code>%s</code> — %d downloads\n", i+1, u.ID, u.Downloads)
	}
	bh.sendText(ctx, b, chatID, sb.String())
}

func (bh *Handlers) handleSetBlocked(ctx context.Context, b *bot.Bot, chatID int64, args string, blocked bool) {
	target, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		bh.sendText(ctx, b, chatID, "Usage: /block &lt;user_id&gt; or /unblock &lt;user_id&gt;")
		return
	}
	if err := bh.users.SetBlocked(target, blocked); err != nil {
		bh.sendText(ctx, b, chatID, fmt.Sprintf("❌ User <code>%d</code> not found.", target))
		return
	}
	if blocked {
		bh.sendText(ctx, b, chatID, fmt.Sprintf("🚫 User <code>%d</code> blocked.", target))
	} else {
		bh.sendText(ctx, b, chatID, fmt.Sprintf("✅ User <code>%d</code> unblocked.", target))
	}
}

// handleAddService expects "emoji | Name | key | note" with the note
// optional.
func (bh *Handlers) handleAddService(ctx context.Context, b *bot.Bot, chatID int64, args string) {
	key, entry, ok := parseServiceArgs(args)
	if !ok {
		bh.sendText(ctx, b, chatID, "Usage: /addservice emoji | Name | key | note")
		return
	}
	if err := bh.services.Add(key, entry); err != nil {
		log.Printf("Error adding service: %v", err)
		bh.sendText(ctx, b, chatID, "❌ Failed to save service.")
		return
	}
	bh.sendText(ctx, b, chatID, fmt.Sprintf("✅ Service <b>%s %s</b> added as <code>%s</code>.",
		entry.Emoji, messages.Escape(entry.Name), key))
}

func parseServiceArgs(args string) (string, types.ServiceEntry, bool) {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 3 {
		parts = append(parts, "")
	}
	if len(parts) != 4 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", types.ServiceEntry{}, false
	}
	entry := types.ServiceEntry{
		Emoji: parts[0],
		Name:  parts[1],
		Note:  parts[3],
	}
	return parts[2], entry, true
}

func (bh *Handlers) handleServiceList(ctx context.Context, b *bot.Bot, chatID int64) {
	all, err := bh.services.All()
	if err != nil {
		log.Printf("Error loading services: %v", err)
		bh.sendText(ctx, b, chatID, "❌ Failed to load services.")
		return
	}
	if len(all) == 0 {
		bh.sendText(ctx, b, chatID, "<i>No services configured.</i>")
		return
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("<b>🧰 Services</b>\n\n")
	for _, k := range keys {
		s := all[k]
		fmt.Fprintf(&sb, "%s <b>%s</b> (<code>%s</code>)\n%s\n\n",
			s.Emoji, messages.Escape(s.Name), k, messages.Escape(s.Note))
	}
	bh.sendText(ctx, b, chatID, sb.String())
}

func (bh *Handlers) handleDelService(ctx context.Context, b *bot.Bot, chatID int64, args string) {
	key := strings.TrimSpace(args)
	if key == "" {
		bh.sendText(ctx, b, chatID, "Usage: /delservice &lt;key&gt;")
		return
	}
	entry, err := bh.services.Delete(key)
	if err != nil {
		bh.sendText(ctx, b, chatID, fmt.Sprintf("❌ Service <code>%s</code> not found.", key))
		return
	}
	bh.sendText(ctx, b, chatID, fmt.Sprintf("🗑 Service <b>%s %s</b> removed.",
		entry.Emoji, messages.Escape(entry.Name)))
}

// handleSetMessage expects "key | replacement text".
func (bh *Handlers) handleSetMessage(ctx context.Context, b *bot.Bot, userID, chatID int64, args string) {
	if !bh.access.IsOwner(userID) {
		bh.sendText(ctx, b, chatID, "⛔ Only owners can override messages.")
		return
	}
	parts := splitPipe(args, 2)
	if parts == nil {
		bh.sendText(ctx, b, chatID, "Usage: /setmsg key | text (keys: start, block, rate)")
		return
	}
	if err := bh.cfg.SetMessage(parts[0], parts[1]); err != nil {
		log.Printf("Error saving message override: %v", err)
		bh.sendText(ctx, b, chatID, "❌ Failed to save message.")
		return
	}
	bh.sendText(ctx, b, chatID, fmt.Sprintf("✅ Message <code>%s</code> updated.", parts[0]))
}

func (bh *Handlers) handlePing(ctx context.Context, b *bot.Bot, chatID int64) {
	start := time.Now()
	msg, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🏓 Pinging...",
	})
	if err != nil {
		log.Printf("Error sending ping: %v", err)
		return
	}
	latency := time.Since(start)
	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: msg.ID,
		Text:      fmt.Sprintf("🏓 Pong! <b>%d ms</b>", latency.Milliseconds()),
		ParseMode: messages.ParseModeHTML,
	})
}

func (bh *Handlers) handleServerInfo(ctx context.Context, b *bot.Bot, chatID int64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	text := fmt.Sprintf(
		"<b>🖥 Server</b>\n\n"+
			"Uptime: <b>%s</b>\n"+
			"Goroutines: <b>%d</b>\n"+
			"Heap in use: <b>%s</b>\n"+
			"Pending sessions: <b>%d</b>\n"+
			"Go: <b>%s</b>",
		time.Since(bh.startedAt).Round(time.Second),
		runtime.NumGoroutine(),
		messages.HumanBytes(int64(m.HeapInuse)),
		bh.sessions.Len(),
		runtime.Version())
	bh.sendText(ctx, b, chatID, text)
}

func (bh *Handlers) handleBackup(ctx context.Context, b *bot.Bot, chatID int64) {
	zipPath, err := store.Backup(bh.settings.DataDir)
	if err != nil {
		log.Printf("Error creating backup: %v", err)
		bh.sendText(ctx, b, chatID, "❌ Backup failed.")
		return
	}
	bh.sendFile(ctx, b, chatID, zipPath, filepath.Base(zipPath))
}

func (bh *Handlers) sendFile(ctx context.Context, b *bot.Bot, chatID int64, path, name string) {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("Error opening %s: %v", path, err)
		bh.sendText(ctx, b, chatID, "❌ File is not available yet.")
		return
	}
	defer f.Close()

	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: name, Data: f},
	})
	if err != nil {
		log.Printf("Error sending document %s: %v", name, err)
		bh.sendText(ctx, b, chatID, "❌ Failed to send file.")
	}
}

// splitPipe splits args on "|" into exactly n trimmed parts, the last
// part keeping any embedded pipes. Returns nil when a required part is
// empty.
func splitPipe(args string, n int) []string {
	parts := strings.SplitN(args, "|", n)
	if len(parts) != n {
		return nil
	}
	out := make([]string, n)
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
		if out[i] == "" {
			return nil
		}
	}
	return out
}
