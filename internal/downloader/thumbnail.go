package downloader

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
)

// FetchThumbnail downloads a thumbnail image to destPath and returns
// its pixel dimensions. Telegram wants width and height alongside a
// video upload to render the preview correctly.
func FetchThumbnail(ctx context.Context, client *http.Client, url, destPath string) (int, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("thumbnail fetch: status %d", resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return 0, 0, err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(destPath)
		return 0, 0, err
	}
	if err := f.Close(); err != nil {
		os.Remove(destPath)
		return 0, 0, err
	}

	rf, err := os.Open(destPath)
	if err != nil {
		return 0, 0, err
	}
	defer rf.Close()
	cfg, _, err := image.DecodeConfig(rf)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
