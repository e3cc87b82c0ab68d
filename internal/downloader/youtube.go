package downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kkdai/youtube/v2"
)

type YouTube struct {
	client     youtube.Client
	ffmpegPath string
}

func NewYouTube(ffmpegPath string) *YouTube {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &YouTube{
		client:     youtube.Client{},
		ffmpegPath: ffmpegPath,
	}
}

// Probe fetches video metadata and the muxed mp4 formats a user can
// choose from, lowest quality first.
func (d *YouTube) Probe(ctx context.Context, url string) (*VideoMeta, error) {
	video, err := d.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	seen := map[int]bool{}
	formats := make([]Format, 0, 8)
	for _, f := range video.Formats.WithAudioChannels() {
		if !strings.Contains(f.MimeType, "video/mp4") {
			continue
		}
		if f.QualityLabel == "" || seen[f.ItagNo] {
			continue
		}
		seen[f.ItagNo] = true
		formats = append(formats, Format{
			Itag:    f.ItagNo,
			Quality: f.QualityLabel,
			Size:    f.ContentLength,
		})
	}
	sort.Slice(formats, func(i, j int) bool {
		return parseQualityNum(formats[i].Quality) < parseQualityNum(formats[j].Quality)
	})

	return &VideoMeta{
		Title:        video.Title,
		Duration:     int(video.Duration.Seconds()),
		ThumbnailURL: bestThumbnail(video),
		Formats:      formats,
	}, nil
}

// Download streams the chosen itag into <destDir>/<name>.mp4.
func (d *YouTube) Download(ctx context.Context, url string, itag int, destDir, name string) (*Result, error) {
	video, err := d.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	format := formatByItag(video.Formats, itag)
	if format == nil {
		return nil, fmt.Errorf("format %d not available", itag)
	}

	path := filepath.Join(destDir, name+".mp4")
	size, err := d.saveStream(ctx, video, format, path)
	if err != nil {
		return nil, err
	}

	return &Result{
		Path:         path,
		Title:        video.Title,
		Duration:     int(video.Duration.Seconds()),
		ThumbnailURL: bestThumbnail(video),
		Size:         size,
	}, nil
}

// DownloadAudio downloads the best audio-only format and transcodes it
// to MP3 with ffmpeg.
func (d *YouTube) DownloadAudio(ctx context.Context, url string, destDir, name string) (*Result, error) {
	video, err := d.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	audio := video.Formats.Type("audio")
	if len(audio) == 0 {
		return nil, fmt.Errorf("no audio formats found")
	}
	best := audio[0]
	for _, f := range audio[1:] {
		if f.Bitrate > best.Bitrate {
			best = f
		}
	}

	rawPath := filepath.Join(destDir, name+rawAudioExt(best.MimeType))
	if _, err := d.saveStream(ctx, video, &best, rawPath); err != nil {
		return nil, err
	}
	defer os.Remove(rawPath)

	mp3Path := filepath.Join(destDir, name+".mp3")
	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-y", "-i", rawPath, "-vn", "-codec:a", "libmp3lame", "-b:a", "192k", mp3Path)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(mp3Path)
		return nil, fmt.Errorf("ffmpeg failed: %v: %s", err, tail(string(out), 300))
	}

	info, err := os.Stat(mp3Path)
	if err != nil {
		return nil, err
	}

	return &Result{
		Path:         mp3Path,
		Title:        video.Title,
		Duration:     int(video.Duration.Seconds()),
		ThumbnailURL: bestThumbnail(video),
		Size:         info.Size(),
	}, nil
}

func (d *YouTube) saveStream(ctx context.Context, video *youtube.Video, format *youtube.Format, path string) (int64, error) {
	stream, _, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return 0, fmt.Errorf("failed to get stream: %w", err)
	}
	defer stream.Close()

	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, stream)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to download stream: %w", err)
	}
	return n, nil
}

func formatByItag(list youtube.FormatList, itag int) *youtube.Format {
	matches := list.Itag(itag)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

func bestThumbnail(video *youtube.Video) string {
	best := ""
	var bestWidth uint
	for _, t := range video.Thumbnails {
		if t.Width >= bestWidth {
			best = t.URL
			bestWidth = t.Width
		}
	}
	return best
}

func rawAudioExt(mimeType string) string {
	if strings.Contains(mimeType, "audio/mp4") {
		return ".m4a"
	}
	return ".webm"
}

func parseQualityNum(quality string) int {
	var num int
	fmt.Sscanf(quality, "%dp", &num)
	return num
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
