package sessions

import (
	"testing"
	"time"
)

func TestResolveIsSingleUse(t *testing.T) {
	c := New(DefaultTTL)

	token := c.Open("https://youtu.be/abc123")
	if len(token) != 8 {
		t.Errorf("token length = %d, want 8", len(token))
	}

	url, ok := c.Resolve(token)
	if !ok || url != "https://youtu.be/abc123" {
		t.Fatalf("Resolve = %q, %v", url, ok)
	}

	if _, ok := c.Resolve(token); ok {
		t.Error("second resolve of the same token must report expired")
	}
}

func TestUnknownTokenExpired(t *testing.T) {
	c := New(DefaultTTL)
	if _, ok := c.Resolve("deadbeef"); ok {
		t.Error("unknown token must report expired")
	}
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	c := New(10 * time.Minute)
	now := time.Unix(1000, 0)
	c.nowFunc = func() time.Time { return now }

	token := c.Open("https://youtu.be/abc123")

	now = now.Add(11 * time.Minute)
	if _, ok := c.Resolve(token); ok {
		t.Error("token past its TTL must report expired")
	}
}

func TestSweepEvictsExpiredOnly(t *testing.T) {
	c := New(10 * time.Minute)
	now := time.Unix(1000, 0)
	c.nowFunc = func() time.Time { return now }

	old := c.Open("https://youtu.be/old")
	now = now.Add(11 * time.Minute)
	fresh := c.Open("https://youtu.be/fresh")

	if n := c.sweep(); n != 1 {
		t.Errorf("sweep evicted %d, want 1", n)
	}
	if _, ok := c.Resolve(old); ok {
		t.Error("expired entry must be gone")
	}
	if _, ok := c.Resolve(fresh); !ok {
		t.Error("fresh entry must survive the sweep")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}
