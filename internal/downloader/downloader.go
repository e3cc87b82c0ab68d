// Package downloader wraps the media-extraction collaborators:
// YouTube via the kkdai/youtube client and Instagram via yt-dlp.
package downloader

// Format is a selectable muxed (video+audio) download option.
type Format struct {
	Itag    int
	Quality string
	Size    int64
}

// VideoMeta is the probe result presented to the user as a format menu.
type VideoMeta struct {
	Title        string
	Duration     int // seconds
	ThumbnailURL string
	Formats      []Format
}

// Result describes a completed download on local disk.
type Result struct {
	Path         string
	Title        string
	Duration     int // seconds
	ThumbnailURL string
	Size         int64
}
