package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/spidybot/mediagrab/internal/downloader"
	"github.com/spidybot/mediagrab/internal/messages"
	"github.com/spidybot/mediagrab/types"
)

type JobKind int

const (
	JobVideo JobKind = iota
	JobAudio
	JobInstagram
)

// Job is one download request claimed from a session token. Token is
// also the unique name prefix for temp files on disk.
type Job struct {
	Token     string
	URL       string
	Kind      JobKind
	Itag      int
	ChatID    int64
	MessageID int
	UserID    int64
}

type Scheduler struct {
	users      types.UserRegistry
	yt         *downloader.YouTube
	insta      *downloader.Instagram
	botClient  *bot.Bot
	httpClient *http.Client

	downloadDir    string
	maxUploadBytes int64
	workers        int

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
	taskQueue  chan *Job
	inFlight   map[string]*inFlightEntry
	inFlightMu sync.RWMutex
}

type inFlightEntry struct {
	chatID    int64
	messageID int
	position  int
}

type Config struct {
	Workers        int
	DownloadDir    string
	MaxUploadBytes int64
}

func NewScheduler(users types.UserRegistry, yt *downloader.YouTube, insta *downloader.Instagram, botClient *bot.Bot, config Config) *Scheduler {
	if config.Workers <= 0 {
		config.Workers = 3
	}

	ctx, cancel := context.WithCancel(context.Background())

	queueSize := config.Workers * 2
	if queueSize < 10 {
		queueSize = 10
	}

	return &Scheduler{
		users:          users,
		yt:             yt,
		insta:          insta,
		botClient:      botClient,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		downloadDir:    config.DownloadDir,
		maxUploadBytes: config.MaxUploadBytes,
		workers:        config.Workers,
		ctx:            ctx,
		cancel:         cancel,
		running:        false,
		taskQueue:      make(chan *Job, queueSize),
		inFlight:       make(map[string]*inFlightEntry),
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("Scheduler started with %d workers", s.workers)

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	log.Println("Stopping scheduler...")
	s.cancel()
	s.wg.Wait()
	log.Println("Scheduler stopped")
}

// Enqueue queues a job and returns its position: 0 means it starts
// immediately, otherwise the job waits behind position-1 others.
// Returns -1 if the token is already in flight.
func (s *Scheduler) Enqueue(job *Job) int {
	s.inFlightMu.Lock()
	if _, exists := s.inFlight[job.Token]; exists {
		s.inFlightMu.Unlock()
		return -1
	}

	running := 0
	maxPos := 0
	for _, e := range s.inFlight {
		if e == nil {
			continue
		}
		if e.position == 0 {
			running++
			continue
		}
		if e.position > maxPos {
			maxPos = e.position
		}
	}

	position := 0
	if running >= s.workers {
		position = maxPos + 1
	}

	s.inFlight[job.Token] = &inFlightEntry{
		chatID:    job.ChatID,
		messageID: job.MessageID,
		position:  position,
	}
	s.inFlightMu.Unlock()

	go func() {
		select {
		case s.taskQueue <- job:
		case <-s.ctx.Done():
			s.inFlightMu.Lock()
			delete(s.inFlight, job.Token)
			s.inFlightMu.Unlock()
		}
	}()

	return position
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	log.Printf("Worker %d started", id)

	for {
		select {
		case <-s.ctx.Done():
			log.Printf("Worker %d stopped", id)
			return
		case job := <-s.taskQueue:
			if err := s.processJob(job); err != nil {
				log.Printf("Worker %d: error processing job %s: %v", id, job.Token, err)
			}

			s.inFlightMu.Lock()
			delete(s.inFlight, job.Token)
			s.inFlightMu.Unlock()

			go s.decrementQueueAndUpdateMessages()
		}
	}
}

func (s *Scheduler) decrementQueueAndUpdateMessages() {
	type upd struct {
		chatID    int64
		messageID int
		text      string
	}
	updates := make([]upd, 0)

	s.inFlightMu.Lock()
	for _, entry := range s.inFlight {
		if entry == nil {
			continue
		}

		if entry.position == 0 {
			continue
		}

		entry.position--

		if entry.chatID == 0 || entry.messageID == 0 {
			continue
		}

		if entry.position == 0 {
			updates = append(updates, upd{
				chatID:    entry.chatID,
				messageID: entry.messageID,
				text:      messages.Downloading(),
			})
		} else {
			updates = append(updates, upd{
				chatID:    entry.chatID,
				messageID: entry.messageID,
				text:      messages.Queued(entry.position),
			})
		}
	}
	s.inFlightMu.Unlock()

	if len(updates) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, u := range updates {
		_, err := s.botClient.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    u.chatID,
			MessageID: u.messageID,
			Text:      u.text,
			ParseMode: messages.ParseModeHTML,
		})
		if err != nil {
			log.Printf("Queue update: failed to edit message chat=%d msg=%d: %v", u.chatID, u.messageID, err)
		}
	}
}

func (s *Scheduler) processJob(job *Job) error {
	log.Printf("Processing job %s: kind=%d url=%s", job.Token, job.Kind, job.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	s.editStatus(ctx, job, messages.Downloading())

	var result *downloader.Result
	var err error
	switch job.Kind {
	case JobVideo:
		result, err = s.yt.Download(ctx, job.URL, job.Itag, s.downloadDir, job.Token)
	case JobAudio:
		result, err = s.yt.DownloadAudio(ctx, job.URL, s.downloadDir, job.Token)
	case JobInstagram:
		result, err = s.insta.Download(ctx, job.URL, s.downloadDir, job.Token)
	default:
		err = fmt.Errorf("unknown job kind %d", job.Kind)
	}
	if err != nil {
		s.editStatus(ctx, job, messages.DownloadFailed(err))
		return err
	}
	defer os.Remove(result.Path)

	if result.Size > s.maxUploadBytes {
		s.editStatus(ctx, job, messages.TooLarge())
		return fmt.Errorf("file too large: %d bytes", result.Size)
	}

	s.editStatus(ctx, job, messages.Uploading())

	if err := s.upload(ctx, job, result); err != nil {
		s.editStatus(ctx, job, messages.DownloadFailed(err))
		return err
	}

	s.editStatus(ctx, job, messages.Uploaded())

	if err := s.users.RecordDownload(job.UserID, result.Size); err != nil {
		log.Printf("Failed to record download for user %d: %v", job.UserID, err)
	}

	return nil
}

func (s *Scheduler) upload(ctx context.Context, job *Job, result *downloader.Result) error {
	f, err := os.Open(result.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	caption := messages.Caption(result.Title, messages.HumanBytes(result.Size))
	fileName := filepath.Base(result.Path)

	switch job.Kind {
	case JobVideo:
		params := &bot.SendVideoParams{
			ChatID:            job.ChatID,
			Video:             &models.InputFileUpload{Filename: fileName, Data: f},
			Caption:           caption,
			ParseMode:         messages.ParseModeHTML,
			Duration:          result.Duration,
			SupportsStreaming: true,
		}
		s.attachThumbnail(ctx, job, result, params)
		_, err = s.botClient.SendVideo(ctx, params)
		return err
	case JobAudio:
		_, err = s.botClient.SendAudio(ctx, &bot.SendAudioParams{
			ChatID:    job.ChatID,
			Audio:     &models.InputFileUpload{Filename: fileName, Data: f},
			Caption:   caption,
			ParseMode: messages.ParseModeHTML,
			Duration:  result.Duration,
			Title:     result.Title,
		})
		return err
	case JobInstagram:
		switch downloader.ClassifyMedia(result.Path) {
		case downloader.MediaVideo:
			_, err = s.botClient.SendVideo(ctx, &bot.SendVideoParams{
				ChatID:            job.ChatID,
				Video:             &models.InputFileUpload{Filename: fileName, Data: f},
				Caption:           caption,
				ParseMode:         messages.ParseModeHTML,
				SupportsStreaming: true,
			})
		case downloader.MediaPhoto:
			_, err = s.botClient.SendPhoto(ctx, &bot.SendPhotoParams{
				ChatID:    job.ChatID,
				Photo:     &models.InputFileUpload{Filename: fileName, Data: f},
				Caption:   caption,
				ParseMode: messages.ParseModeHTML,
			})
		default:
			_, err = s.botClient.SendDocument(ctx, &bot.SendDocumentParams{
				ChatID:    job.ChatID,
				Document:  &models.InputFileUpload{Filename: fileName, Data: f},
				Caption:   caption,
				ParseMode: messages.ParseModeHTML,
			})
		}
		return err
	}
	return fmt.Errorf("unknown job kind %d", job.Kind)
}

// attachThumbnail is best effort, an upload without a preview is still
// a successful upload.
func (s *Scheduler) attachThumbnail(ctx context.Context, job *Job, result *downloader.Result, params *bot.SendVideoParams) {
	if result.ThumbnailURL == "" {
		return
	}

	thumbPath := filepath.Join(s.downloadDir, job.Token+"_thumb.jpg")
	defer os.Remove(thumbPath)

	w, h, err := downloader.FetchThumbnail(ctx, s.httpClient, result.ThumbnailURL, thumbPath)
	if err != nil {
		log.Printf("Thumbnail fetch failed for %s: %v", job.Token, err)
		return
	}
	data, err := os.ReadFile(thumbPath)
	if err != nil {
		return
	}

	params.Thumbnail = &models.InputFileUpload{Filename: "thumb.jpg", Data: bytes.NewReader(data)}
	params.Width = w
	params.Height = h
}

func (s *Scheduler) editStatus(ctx context.Context, job *Job, text string) {
	if job.ChatID == 0 || job.MessageID == 0 {
		return
	}
	_, err := s.botClient.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    job.ChatID,
		MessageID: job.MessageID,
		Text:      text,
		ParseMode: messages.ParseModeHTML,
	})
	if err != nil {
		log.Printf("Failed to edit status message chat=%d msg=%d: %v", job.ChatID, job.MessageID, err)
	}
}
