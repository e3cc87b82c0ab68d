package sessions

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultTTL = 30 * time.Minute

type entry struct {
	url       string
	expiresAt time.Time
}

// Cache maps short opaque tokens to a pending download's source URL
// while the user picks a format. Entries are single-use and expire
// after the TTL; state is process-local and cleared on restart.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	nowFunc func() time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Open stores the URL under a fresh 8-character token, short enough to
// fit Telegram's 64-byte callback-data limit alongside a format id.
func (c *Cache) Open(url string) string {
	token := uuid.New().String()[:8]

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token] = entry{
		url:       url,
		expiresAt: c.nowFunc().Add(c.ttl),
	}
	return token
}

// Resolve consumes the token. Unknown or expired tokens report false,
// which is the caller's "session expired" path.
func (c *Cache) Resolve(token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[token]
	if !ok {
		return "", false
	}
	delete(c.entries, token)
	if c.nowFunc().After(e.expiresAt) {
		return "", false
	}
	return e.url, true
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartSweeper evicts expired entries periodically so that sessions
// opened but never resolved do not accumulate for the process lifetime.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := c.sweep(); n > 0 {
					log.Printf("Session sweep: evicted %d expired entries", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (c *Cache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()
	evicted := 0
	for token, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, token)
			evicted++
		}
	}
	return evicted
}
