package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spidybot/mediagrab/types"
)

func newTestUserStore(t *testing.T) *UserStore {
	t.Helper()
	return NewUserStore(filepath.Join(t.TempDir(), "users.json"))
}

func TestUpsertOnContactCreatesZeroCounters(t *testing.T) {
	s := newTestUserStore(t)

	err := s.UpsertOnContact(types.Contact{ID: 42, FirstName: "Ann", Username: "ann"})
	if err != nil {
		t.Fatalf("UpsertOnContact: %v", err)
	}

	rec, ok := s.Get(42)
	if !ok {
		t.Fatal("expected record for new contact")
	}
	if rec.TotalDownloads != 0 || rec.TotalMB != 0 {
		t.Errorf("new record counters = %d/%d MB, want 0/0", rec.TotalDownloads, rec.TotalMB)
	}
	if rec.JoinedAt == "" || rec.LastActive == "" {
		t.Error("expected joined_at and last_active to be set")
	}
	if rec.Blocked {
		t.Error("new record must not be blocked")
	}
}

func TestUpsertOnContactRefreshesProfileOnly(t *testing.T) {
	s := newTestUserStore(t)

	if err := s.UpsertOnContact(types.Contact{ID: 42, FirstName: "Ann"}); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordDownload(42, 5*1024*1024); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertOnContact(types.Contact{ID: 42, FirstName: "Anna", Username: "anna"}); err != nil {
		t.Fatal(err)
	}

	rec, _ := s.Get(42)
	if rec.FirstName != "Anna" || rec.Username != "anna" {
		t.Errorf("profile not refreshed: %+v", rec)
	}
	if rec.TotalDownloads != 1 || rec.TotalMB != 5 {
		t.Errorf("counters changed by contact upsert: %d/%d MB", rec.TotalDownloads, rec.TotalMB)
	}
}

func TestRecordDownloadRoundsPerCall(t *testing.T) {
	tests := []struct {
		name   string
		bytes  int64
		wantMB int64
	}{
		{"5 MiB", 5 * 1024 * 1024, 5},
		{"under half MiB rounds down", 100 * 1024, 0},
		{"just over half MiB rounds up", 600 * 1024, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestUserStore(t)
			if err := s.RecordDownload(7, tt.bytes); err != nil {
				t.Fatal(err)
			}
			rec, ok := s.Get(7)
			if !ok {
				t.Fatal("expected record to be created on first download")
			}
			if rec.TotalDownloads != 1 {
				t.Errorf("TotalDownloads = %d, want 1", rec.TotalDownloads)
			}
			if rec.TotalMB != tt.wantMB {
				t.Errorf("TotalMB = %d, want %d", rec.TotalMB, tt.wantMB)
			}
		})
	}
}

func TestSetBlocked(t *testing.T) {
	s := newTestUserStore(t)

	if err := s.SetBlocked(42, true); err != ErrNotFound {
		t.Errorf("blocking unknown user: err = %v, want ErrNotFound", err)
	}

	if err := s.UpsertOnContact(types.Contact{ID: 42}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBlocked(42, true); err != nil {
		t.Fatal(err)
	}
	if !s.IsBlocked(42) {
		t.Error("expected user to be blocked")
	}
	if err := s.SetBlocked(42, false); err != nil {
		t.Fatal(err)
	}
	if s.IsBlocked(42) {
		t.Error("expected user to be unblocked")
	}
}

func TestStatsAndTopUsers(t *testing.T) {
	s := newTestUserStore(t)

	for _, id := range []int64{1, 2, 3} {
		if err := s.UpsertOnContact(types.Contact{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.RecordDownload(2, 10*1024*1024); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordDownload(2, 10*1024*1024); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordDownload(3, 1024*1024); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBlocked(1, true); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalUsers != 3 || stats.Blocked != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.TotalDownloads != 3 || stats.TotalMB != 21 {
		t.Errorf("download totals = %d/%d MB, want 3/21", stats.TotalDownloads, stats.TotalMB)
	}
	if stats.NewToday != 3 {
		t.Errorf("NewToday = %d, want 3", stats.NewToday)
	}

	top, err := s.TopByDownloads(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].ID != "2" || top[0].Downloads != 2 || top[1].ID != "3" {
		t.Errorf("top = %+v", top)
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	s := NewUserStore(path)

	if err := s.UpsertOnContact(types.Contact{ID: 9, FirstName: "Bo", Language: "en"}); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordDownload(9, 3*1024*1024); err != nil {
		t.Fatal(err)
	}

	before, err := s.All()
	if err != nil {
		t.Fatal(err)
	}

	// A fresh store over the same file must see the identical document.
	after, err := NewUserStore(path).All()
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before) {
		t.Fatalf("round trip lost records: %d != %d", len(after), len(before))
	}
	for uid, want := range before {
		got, ok := after[uid]
		if !ok {
			t.Fatalf("round trip lost user %s", uid)
		}
		if got != want {
			t.Errorf("user %s round trip mismatch:\n got %+v\nwant %+v", uid, got, want)
		}
	}
}

func TestCorruptFileQuarantined(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewUserStore(path)
	users, err := s.All()
	if err != nil {
		t.Fatalf("corrupt file must degrade to empty, got %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected empty registry, got %d records", len(users))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "users.json.corrupt.") {
			found = true
		}
	}
	if !found {
		t.Error("expected quarantined copy of the corrupt file")
	}
}
