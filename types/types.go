package types

import "time"

// TimeLayout is the timestamp format stored in the JSON documents.
const TimeLayout = "2006-01-02 15:04:05"

func Now() string {
	return time.Now().Format(TimeLayout)
}

type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
	RoleMod   Role = "mod"
	RoleNone  Role = "none"
)

// Contact carries the mutable profile fields refreshed on every update.
type Contact struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	Language  string
}

type UserRecord struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Username       string `json:"username"`
	Language       string `json:"language"`
	JoinedAt       string `json:"joined_at"`
	LastActive     string `json:"last_active"`
	TotalDownloads int    `json:"total_downloads"`
	TotalMB        int64  `json:"total_mb"`
	Blocked        bool   `json:"blocked"`
}

type ServiceEntry struct {
	Emoji     string `json:"emoji"`
	Name      string `json:"name"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

// ConfigDocument holds the persisted role map and message overrides.
// Both maps are lazily initialized to empty on load.
type ConfigDocument struct {
	Roles    map[string]string `json:"roles"`
	Messages map[string]string `json:"messages"`
}

type UserStats struct {
	TotalUsers     int
	Blocked        int
	TotalDownloads int
	TotalMB        int64
	NewToday       int
}

type RankedUser struct {
	ID        string
	Downloads int
}

type UserRegistry interface {
	UpsertOnContact(c Contact) error
	RecordDownload(userID int64, byteSize int64) error
	IsBlocked(userID int64) bool
	SetBlocked(userID int64, blocked bool) error
	Get(userID int64) (*UserRecord, bool)
	All() (map[string]UserRecord, error)
	Stats() (UserStats, error)
	TopByDownloads(n int) ([]RankedUser, error)
	Path() string
}

type ServiceCatalog interface {
	Add(key string, entry ServiceEntry) error
	All() (map[string]ServiceEntry, error)
	Delete(key string) (*ServiceEntry, error)
}

type ConfigStore interface {
	Roles() (map[string]string, error)
	SetRole(userID string, role string) error
	Message(key, fallback string) string
	SetMessage(key, value string) error
	Document() (ConfigDocument, error)
}
