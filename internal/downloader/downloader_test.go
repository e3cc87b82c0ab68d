package downloader

import (
	"sort"
	"strings"
	"testing"

	"github.com/kkdai/youtube/v2"
)

func TestFormatByItag(t *testing.T) {
	list := youtube.FormatList{
		{ItagNo: 18, QualityLabel: "360p"},
		{ItagNo: 22, QualityLabel: "720p"},
	}

	f := formatByItag(list, 22)
	if f == nil || f.ItagNo != 22 || f.QualityLabel != "720p" {
		t.Fatalf("got %+v", f)
	}

	if f := formatByItag(list, 137); f != nil {
		t.Errorf("expected nil for unavailable itag, got %+v", f)
	}
	if f := formatByItag(youtube.FormatList{}, 18); f != nil {
		t.Errorf("expected nil for empty list, got %+v", f)
	}
}

func TestParseQualityNum(t *testing.T) {
	cases := map[string]int{
		"144p":   144,
		"360p":   360,
		"720p60": 720,
		"1080p":  1080,
		"":       0,
	}
	for in, want := range cases {
		if got := parseQualityNum(in); got != want {
			t.Errorf("parseQualityNum(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestFormatSortOrder(t *testing.T) {
	formats := []Format{
		{Itag: 22, Quality: "720p"},
		{Itag: 17, Quality: "144p"},
		{Itag: 18, Quality: "360p"},
	}
	sort.Slice(formats, func(i, j int) bool {
		return parseQualityNum(formats[i].Quality) < parseQualityNum(formats[j].Quality)
	})
	want := []string{"144p", "360p", "720p"}
	for i, q := range want {
		if formats[i].Quality != q {
			t.Fatalf("position %d: got %s, want %s", i, formats[i].Quality, q)
		}
	}
}

func TestRawAudioExt(t *testing.T) {
	if got := rawAudioExt(`audio/mp4; codecs="mp4a.40.2"`); got != ".m4a" {
		t.Errorf("mp4 audio: got %s", got)
	}
	if got := rawAudioExt(`audio/webm; codecs="opus"`); got != ".webm" {
		t.Errorf("webm audio: got %s", got)
	}
}

func TestTail(t *testing.T) {
	if got := tail("  short  ", 100); got != "short" {
		t.Errorf("tail short: got %q", got)
	}
	long := strings.Repeat("a", 50) + "ERROR"
	got := tail(long, 10)
	if len(got) != 10 || !strings.HasSuffix(got, "ERROR") {
		t.Errorf("tail long: got %q", got)
	}
}

func TestClassifyMedia(t *testing.T) {
	cases := map[string]MediaKind{
		"/tmp/insta_ab12.mp4":  MediaVideo,
		"/tmp/insta_ab12.webm": MediaVideo,
		"/tmp/insta_ab12.jpg":  MediaPhoto,
		"/tmp/insta_ab12.png":  MediaPhoto,
		"/tmp/insta_ab12.bin":  MediaDocument,
	}
	for path, want := range cases {
		if got := ClassifyMedia(path); got != want {
			t.Errorf("ClassifyMedia(%q) = %d, want %d", path, got, want)
		}
	}
}
