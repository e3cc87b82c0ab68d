package messages

import (
	"fmt"
	"strings"
	"time"
)

const ParseModeHTML = "HTML"

// Override keys admins can customize via /setmsg.
const (
	KeyStart = "start"
	KeyBlock = "block"
	KeyRate  = "rate"
)

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

// Greeting picks a wish by the local hour.
func Greeting(now time.Time) string {
	switch {
	case now.Hour() < 12:
		return "Good morning 🌞"
	case now.Hour() < 18:
		return "Good afternoon 🌤"
	default:
		return "Good evening 🙂"
	}
}

func StartWelcome(firstName, wish string) string {
	return fmt.Sprintf("👋 Hello <b>%s</b>,\n<b>%s</b>\n\n"+
		"🎬 Send any <b>YouTube</b> or <b>Instagram</b> link\n"+
		"and I will give you high-quality <b>Video / Audio</b> download options.\n\n"+
		"Fast ⚡ | Clean UI | High Quality 🎧🎬", Escape(firstName), Escape(wish))
}

func HelpText() string {
	return "<b>How to use this bot?</b>\n\n" +
		"1️⃣ Send any <b>YouTube</b> or <b>Instagram</b> link\n" +
		"2️⃣ For YouTube the bot shows <b>video qualities</b> + an <b>MP3 option</b>\n" +
		"3️⃣ Select and wait — the bot uploads the file directly to you\n\n" +
		"Enjoy 🎧🎬"
}

func AboutText() string {
	return "📛 <b>Bot:</b> Media Grab Bot\n" +
		"💻 <b>Language:</b> Go\n\n" +
		"✨ Download YouTube videos, MP3 audio and Instagram media right in Telegram ⚡"
}

func Blocked() string {
	return "🚫 You are blocked from using this bot."
}

func RateLimited() string {
	return "⏳ Too many requests, try again in a minute."
}

func FetchingFormats() string {
	return "🔍 <b>Fetching available formats...</b>"
}

func FetchingInstagram() string {
	return "📥 <b>Fetching Instagram media...</b>"
}

func ChooseFormat(title string) string {
	return fmt.Sprintf("✅ <b>Available formats for:</b>\n<code>%s</code>", Escape(title))
}

func NoFormats() string {
	return "❌ No valid format found. Try another link."
}

func ErrorFetchingFormats(err error) string {
	return "❌ Error while fetching formats:\n<code>" + Escape(err.Error()) + "</code>"
}

func SessionExpired() string {
	return "⚠️ Session expired. Please resend the link."
}

func InvalidCallback() string {
	return "❌ Invalid button data. Please resend the link."
}

func Downloading() string {
	return "⬇️ <b>Downloading...</b>"
}

func Queued(position int) string {
	return fmt.Sprintf("⏳ <b>Queued:</b> %d ahead of you", position)
}

func Uploading() string {
	return "📤 <b>Uploading...</b>"
}

func Uploaded() string {
	return "✅ <b>Successfully uploaded!</b>"
}

func DownloadFailed(err error) string {
	return "❌ Download error:\n<code>" + Escape(err.Error()) + "</code>"
}

func TooLarge() string {
	return "❌ File is over the Telegram size limit.\nTry a smaller format or a shorter video."
}

func Caption(title, size string) string {
	return fmt.Sprintf("<b>%s</b>\n📦 Size: <code>%s</code>", Escape(title), Escape(size))
}

func TextHint() string {
	return "🎬 Send a YouTube or Instagram link to get started."
}

func UnknownCommand() string {
	return "❓ Unknown command. Try /help."
}

func JoinPrompt(channels []string) string {
	lines := []string{"⚠️ <b>Join our channel(s) first:</b>", ""}
	for _, ch := range channels {
		lines = append(lines, "• <code>"+Escape(ch)+"</code>")
	}
	lines = append(lines, "", "Then press <b>I JOINED</b> below or resend your link.")
	return strings.Join(lines, "\n")
}

func JoinVerified(channels []string) string {
	return fmt.Sprintf("✅ Thanks! You joined <b>%s</b>.\n"+
		"You can use the bot normally now.\n\nSend any link 👇",
		Escape(strings.Join(channels, ", ")))
}

// HumanBytes converts a byte count to a human-readable string,
// e.g. 1048576 -> "1 MB".
func HumanBytes(size int64) string {
	if size <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB", "TB"}
	value := float64(size)
	idx := 0
	for value >= 1024 && idx < len(units)-1 {
		value /= 1024
		idx++
	}
	s := fmt.Sprintf("%.2f", value)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	return s + " " + units[idx]
}
