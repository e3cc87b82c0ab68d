package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/spidybot/mediagrab/internal/access"
	"github.com/spidybot/mediagrab/internal/config"
	"github.com/spidybot/mediagrab/internal/downloader"
	"github.com/spidybot/mediagrab/internal/handlers"
	"github.com/spidybot/mediagrab/internal/middleware"
	"github.com/spidybot/mediagrab/internal/ratelimit"
	"github.com/spidybot/mediagrab/internal/scheduler"
	"github.com/spidybot/mediagrab/internal/sessions"
	"github.com/spidybot/mediagrab/store"
)

func main() {
	_ = config.LoadEnvFile("config.env")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	settings := config.FromEnv()
	if settings.BotToken == "" {
		log.Fatal("BOT_TOKEN is not set")
	}
	if len(settings.OwnerIDs) == 0 {
		log.Println("Warning: OWNER_IDS is empty, admin commands are unreachable")
	}

	if err := os.MkdirAll(settings.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data dir: %v", err)
	}
	if err := os.MkdirAll(settings.DownloadDir, 0o755); err != nil {
		log.Fatalf("Failed to create download dir: %v", err)
	}

	logFile, err := os.OpenFile(filepath.Join(settings.DataDir, "logs.txt"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(io.MultiWriter(os.Stderr, logFile))

	userStore := store.NewUserStore(filepath.Join(settings.DataDir, "users.json"))
	serviceStore := store.NewServiceStore(filepath.Join(settings.DataDir, "services.json"))
	configStore := store.NewConfigStore(filepath.Join(settings.DataDir, "config.json"))

	acc := access.NewResolver(settings.OwnerIDs, configStore)
	limiter := ratelimit.New(ratelimit.DefaultMaxRequests, ratelimit.DefaultWindow)

	cache := sessions.New(settings.SessionTTL)
	cache.StartSweeper(ctx, 5*time.Minute)

	yt := downloader.NewYouTube(settings.FFmpegPath)
	insta := downloader.NewInstagram(settings.YTDLPPath, settings.CookiesFile)

	httpClient := &http.Client{
		Timeout: 10 * time.Minute,
	}
	pollTimeout := 50 * time.Second

	b, err := bot.New(
		settings.BotToken,
		bot.WithHTTPClient(pollTimeout, httpClient),
	)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	sched := scheduler.NewScheduler(userStore, yt, insta, b, scheduler.Config{
		Workers:        settings.Workers,
		DownloadDir:    settings.DownloadDir,
		MaxUploadBytes: settings.MaxUploadBytes,
	})
	sched.Start()
	defer sched.Stop()

	h := handlers.NewHandlers(userStore, serviceStore, configStore, acc, limiter, cache, sched, yt, settings)

	middlewares := middleware.NewMessageAnalyzer(userStore)
	handlerChain := middlewares.RegisterContact(
		middlewares.Classify(
			h.MainHandler,
		),
	)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, handlerChain)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, handlerChain)

	log.Println("Bot started. Press Ctrl+C to stop.")
	b.Start(ctx)
}
