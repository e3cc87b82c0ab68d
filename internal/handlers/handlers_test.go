package handlers

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spidybot/mediagrab/internal/access"
	"github.com/spidybot/mediagrab/internal/config"
	"github.com/spidybot/mediagrab/internal/messages"
	"github.com/spidybot/mediagrab/internal/ratelimit"
	"github.com/spidybot/mediagrab/internal/sessions"
	"github.com/spidybot/mediagrab/store"
	"github.com/spidybot/mediagrab/types"
)

func newTestHandlers(t *testing.T, maxRequests int) *Handlers {
	t.Helper()
	dir := t.TempDir()
	users := store.NewUserStore(filepath.Join(dir, "users.json"))
	services := store.NewServiceStore(filepath.Join(dir, "services.json"))
	cfg := store.NewConfigStore(filepath.Join(dir, "config.json"))
	acc := access.NewResolver(nil, cfg)
	limiter := ratelimit.New(maxRequests, time.Minute)
	cache := sessions.New(0)
	return NewHandlers(users, services, cfg, acc, limiter, cache, nil, nil, config.Settings{DataDir: dir})
}

func TestGateCheckBlockedBeforeRateLimit(t *testing.T) {
	bh := newTestHandlers(t, 2)
	if err := bh.users.UpsertOnContact(types.Contact{ID: 42, FirstName: "Ann"}); err != nil {
		t.Fatal(err)
	}
	if err := bh.users.SetBlocked(42, true); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		reject, ok := bh.gateCheck(42)
		if ok {
			t.Fatal("blocked user passed the gate")
		}
		if reject != messages.Blocked() {
			t.Fatalf("got %q, want blocked message", reject)
		}
	}

	// The rejections above must not have consumed rate-limit quota.
	if err := bh.users.SetBlocked(42, false); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, ok := bh.gateCheck(42); !ok {
			t.Fatalf("request %d rejected, blocked rejections consumed quota", i+1)
		}
	}
	if reject, ok := bh.gateCheck(42); ok || reject != messages.RateLimited() {
		t.Fatalf("expected rate-limit rejection, got ok=%v text=%q", ok, reject)
	}
}

func TestGateCheckUsesOverrides(t *testing.T) {
	bh := newTestHandlers(t, 1)
	if err := bh.users.UpsertOnContact(types.Contact{ID: 7}); err != nil {
		t.Fatal(err)
	}
	if err := bh.cfg.SetMessage(messages.KeyRate, "slow down"); err != nil {
		t.Fatal(err)
	}

	if _, ok := bh.gateCheck(7); !ok {
		t.Fatal("first request should pass")
	}
	reject, ok := bh.gateCheck(7)
	if ok || reject != "slow down" {
		t.Fatalf("got ok=%v text=%q, want rate override", ok, reject)
	}
}

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		in, cmd, args string
	}{
		{"/start", "/start", ""},
		{"/start@MediaGrabBot", "/start", ""},
		{"/user 12345", "/user", "12345"},
		{"/setmsg start | hello there", "/setmsg", "start | hello there"},
		{"  /ping  ", "/ping", ""},
	}
	for _, c := range cases {
		cmd, args := splitCommand(c.in)
		if cmd != c.cmd || args != c.args {
			t.Errorf("splitCommand(%q) = (%q, %q), want (%q, %q)", c.in, cmd, args, c.cmd, c.args)
		}
	}
}

func TestParseDownloadCallback(t *testing.T) {
	token, itag, mode, ok := parseDownloadCallback("ytdl|a1b2c3d4|18|video")
	if !ok || token != "a1b2c3d4" || itag != 18 || mode != "video" {
		t.Fatalf("got (%q, %d, %q, %v)", token, itag, mode, ok)
	}

	token, itag, mode, ok = parseDownloadCallback("ytdl|a1b2c3d4|0|audio")
	if !ok || itag != 0 || mode != "audio" {
		t.Fatalf("audio: got (%q, %d, %q, %v)", token, itag, mode, ok)
	}

	bad := []string{
		"",
		"ytdl|tok|18",
		"ytdl|tok|18|video|extra",
		"other|tok|18|video",
		"ytdl||18|video",
		"ytdl|tok|xx|video",
		"ytdl|tok|-1|video",
		"ytdl|tok|18|document",
	}
	for _, data := range bad {
		if _, _, _, ok := parseDownloadCallback(data); ok {
			t.Errorf("expected parse failure for %q", data)
		}
	}
}

func TestParseDownloadCallbackLength(t *testing.T) {
	// Tokens are 8 chars and itags are at most 3 digits, well inside
	// Telegram's 64-byte callback payload limit.
	data := "ytdl|a1b2c3d4|999|video"
	if len(data) > maxCallbackData {
		t.Fatalf("callback data %q exceeds %d bytes", data, maxCallbackData)
	}
}

func TestSplitPipe(t *testing.T) {
	if splitPipe("a | | c | d", 4) != nil {
		t.Error("expected nil for empty part")
	}

	kv := splitPipe("start | hi | there", 2)
	if kv == nil || kv[0] != "start" || kv[1] != "hi | there" {
		t.Errorf("got %v", kv)
	}
}

func TestParseServiceArgs(t *testing.T) {
	key, entry, ok := parseServiceArgs("🎬 | YouTube | yt | downloads videos")
	if !ok || key != "yt" || entry.Emoji != "🎬" || entry.Name != "YouTube" || entry.Note != "downloads videos" {
		t.Fatalf("got (%q, %+v, %v)", key, entry, ok)
	}

	// The note is optional.
	key, entry, ok = parseServiceArgs("📸 | Instagram | ig")
	if !ok || key != "ig" || entry.Note != "" {
		t.Fatalf("3-part form: got (%q, %+v, %v)", key, entry, ok)
	}
	key, entry, ok = parseServiceArgs("📸 | Instagram | ig |")
	if !ok || key != "ig" || entry.Note != "" {
		t.Fatalf("empty note: got (%q, %+v, %v)", key, entry, ok)
	}

	bad := []string{
		"",
		"🎬 | YouTube",
		" | YouTube | yt",
		"🎬 | | yt",
		"🎬 | YouTube | ",
		"a | b | c | d | e",
	}
	for _, args := range bad {
		if _, _, ok := parseServiceArgs(args); ok {
			t.Errorf("expected parse failure for %q", args)
		}
	}
}

func TestChannelChatID(t *testing.T) {
	if got := channelChatID("@mychannel"); got != "@mychannel" {
		t.Errorf("got %v", got)
	}
	if got := channelChatID("-1001234567890"); got != int64(-1001234567890) {
		t.Errorf("got %v", got)
	}
	if got := channelChatID("mychannel"); got != "@mychannel" {
		t.Errorf("got %v", got)
	}
}
