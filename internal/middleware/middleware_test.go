package middleware

import "testing"

func TestYouTubeRegex(t *testing.T) {
	matches := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"http://youtube.com/shorts/abc123",
		"www.youtube.com/watch?v=abc",
		"youtu.be/abc",
	}
	for _, s := range matches {
		if !youtubeRe.MatchString(s) {
			t.Errorf("expected match: %q", s)
		}
	}

	misses := []string{
		"https://vimeo.com/12345",
		"check out youtube.com later",
		"https://youtube.com",
		"just text",
	}
	for _, s := range misses {
		if youtubeRe.MatchString(s) {
			t.Errorf("unexpected match: %q", s)
		}
	}
}

func TestInstagramRegex(t *testing.T) {
	matches := []string{
		"https://www.instagram.com/reel/abc123/",
		"https://instagram.com/p/xyz/",
		"instagr.am/p/xyz",
	}
	for _, s := range matches {
		if !instagramRe.MatchString(s) {
			t.Errorf("expected match: %q", s)
		}
	}

	if instagramRe.MatchString("https://instagram.com") {
		t.Error("bare domain should not match")
	}
}
