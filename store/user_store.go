package store

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spidybot/mediagrab/types"
)

// UserStore keeps the user registry in a single JSON document.
// Every mutation is a full load-modify-save cycle under the store mutex,
// so concurrent handler invocations cannot interleave partial writes.
type UserStore struct {
	path string
	mu   sync.Mutex
}

func NewUserStore(path string) *UserStore {
	return &UserStore{path: path}
}

func (s *UserStore) Path() string {
	return s.path
}

func (s *UserStore) load() (map[string]types.UserRecord, error) {
	users := map[string]types.UserRecord{}
	if err := loadOrEmpty(s.path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) UpsertOnContact(c types.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}

	uid := strconv.FormatInt(c.ID, 10)
	now := types.Now()
	rec, ok := users[uid]
	if !ok {
		rec = types.UserRecord{
			JoinedAt: now,
		}
	}
	rec.FirstName = c.FirstName
	rec.LastName = c.LastName
	rec.Username = c.Username
	if c.Language != "" {
		rec.Language = c.Language
	}
	rec.LastActive = now
	users[uid] = rec

	return SaveJSON(s.path, users)
}

func (s *UserStore) RecordDownload(userID int64, byteSize int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}

	uid := strconv.FormatInt(userID, 10)
	now := types.Now()
	rec, ok := users[uid]
	if !ok {
		// Contact normally precedes a download; create a bare record anyway.
		rec = types.UserRecord{JoinedAt: now}
	}
	rec.TotalDownloads++
	rec.TotalMB += int64(math.Round(float64(byteSize) / (1 << 20)))
	rec.LastActive = now
	users[uid] = rec

	return SaveJSON(s.path, users)
}

func (s *UserStore) IsBlocked(userID int64) bool {
	rec, ok := s.Get(userID)
	if !ok {
		return false
	}
	return rec.Blocked
}

func (s *UserStore) SetBlocked(userID int64, blocked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}

	uid := strconv.FormatInt(userID, 10)
	rec, ok := users[uid]
	if !ok {
		return ErrNotFound
	}
	rec.Blocked = blocked
	users[uid] = rec

	return SaveJSON(s.path, users)
}

func (s *UserStore) Get(userID int64) (*types.UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, false
	}
	rec, ok := users[strconv.FormatInt(userID, 10)]
	if !ok {
		return nil, false
	}
	return &rec, true
}

func (s *UserStore) All() (map[string]types.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *UserStore) Stats() (types.UserStats, error) {
	users, err := s.All()
	if err != nil {
		return types.UserStats{}, err
	}

	today := time.Now().Format("2006-01-02")
	stats := types.UserStats{TotalUsers: len(users)}
	for _, u := range users {
		if u.Blocked {
			stats.Blocked++
		}
		if strings.HasPrefix(u.JoinedAt, today) {
			stats.NewToday++
		}
		stats.TotalDownloads += u.TotalDownloads
		stats.TotalMB += u.TotalMB
	}
	return stats, nil
}

func (s *UserStore) TopByDownloads(n int) ([]types.RankedUser, error) {
	users, err := s.All()
	if err != nil {
		return nil, err
	}

	ranked := make([]types.RankedUser, 0, len(users))
	for uid, u := range users {
		ranked = append(ranked, types.RankedUser{ID: uid, Downloads: u.TotalDownloads})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Downloads != ranked[j].Downloads {
			return ranked[i].Downloads > ranked[j].Downloads
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}
