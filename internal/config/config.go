package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings gathers process configuration from the environment.
type Settings struct {
	BotToken string

	// OwnerIDs is the static owner allow-list; it cannot be altered at
	// runtime and always resolves as the owner role.
	OwnerIDs []int64

	// Channels users must join before content commands proceed.
	// Empty disables the gate.
	Channels []string

	DataDir     string
	DownloadDir string

	// MaxUploadBytes is the transport ceiling checked after download.
	MaxUploadBytes int64

	Workers    int
	SessionTTL time.Duration

	YTDLPPath   string
	FFmpegPath  string
	CookiesFile string
}

func FromEnv() Settings {
	s := Settings{
		BotToken:       os.Getenv("BOT_TOKEN"),
		OwnerIDs:       ParseIDList(os.Getenv("OWNER_IDS")),
		Channels:       ParseList(os.Getenv("CHANNELS")),
		DataDir:        envOr("DATA_DIR", "data"),
		DownloadDir:    envOr("DOWNLOAD_DIR", "downloads"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 1_900_000_000),
		Workers:        int(envInt64("WORKERS", 3)),
		SessionTTL:     time.Duration(envInt64("SESSION_TTL_MINUTES", 30)) * time.Minute,
		YTDLPPath:      envOr("YTDLP_PATH", "yt-dlp"),
		FFmpegPath:     envOr("FFMPEG_PATH", "ffmpeg"),
		CookiesFile:    os.Getenv("COOKIES_FILE"),
	}
	return s
}

// ParseList splits a comma- or space-separated value.
func ParseList(raw string) []string {
	raw = strings.ReplaceAll(raw, ",", " ")
	fields := strings.Fields(raw)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ParseIDList parses a comma- or space-separated list of numeric
// identities; malformed entries are dropped.
func ParseIDList(raw string) []int64 {
	var ids []int64
	for _, f := range ParseList(raw) {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func envOr(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func envInt64(name string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
