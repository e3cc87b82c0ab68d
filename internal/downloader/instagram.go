package downloader

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Instagram downloads public reels, posts and photos by shelling out
// to yt-dlp; there is no usable Go-native Instagram extractor.
type Instagram struct {
	ytdlpPath   string
	cookiesFile string
}

func NewInstagram(ytdlpPath, cookiesFile string) *Instagram {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	return &Instagram{ytdlpPath: ytdlpPath, cookiesFile: cookiesFile}
}

// Download fetches the media behind url into destDir using a unique
// name prefix and returns the local file. Albums yield their first
// entry, which is what gets sent to the user.
func (d *Instagram) Download(ctx context.Context, url, destDir, name string) (*Result, error) {
	prefix := "insta_" + name
	outTmpl := filepath.Join(destDir, prefix+".%(ext)s")

	args := []string{
		"--no-warnings",
		"--no-check-certificate",
		"--no-playlist",
		"-o", outTmpl,
	}
	if d.cookiesFile != "" {
		args = append(args, "--cookies", d.cookiesFile)
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, d.ytdlpPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %v: %s", err, tail(string(out), 300))
	}

	matches, err := filepath.Glob(filepath.Join(destDir, prefix+".*"))
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("downloaded file not found")
	}
	path := matches[0]

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	return &Result{
		Path:  path,
		Title: "Instagram Media",
		Size:  info.Size(),
	}, nil
}

// MediaKind classifies a downloaded file by extension so the upload
// path can pick video, photo or document delivery.
type MediaKind int

const (
	MediaVideo MediaKind = iota
	MediaPhoto
	MediaDocument
)

func ClassifyMedia(path string) MediaKind {
	switch filepath.Ext(path) {
	case ".mp4", ".webm", ".mkv", ".mov":
		return MediaVideo
	case ".jpg", ".jpeg", ".png", ".webp":
		return MediaPhoto
	default:
		return MediaDocument
	}
}
