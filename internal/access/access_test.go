package access

import (
	"path/filepath"
	"testing"

	"github.com/spidybot/mediagrab/store"
	"github.com/spidybot/mediagrab/types"
)

func newTestResolver(t *testing.T, owners []int64) (*Resolver, *store.ConfigStore) {
	t.Helper()
	cfg := store.NewConfigStore(filepath.Join(t.TempDir(), "config.json"))
	return NewResolver(owners, cfg), cfg
}

func TestOwnerAlwaysWins(t *testing.T) {
	r, cfg := newTestResolver(t, []int64{1})

	// A conflicting persisted assignment must not demote an owner.
	if err := cfg.SetRole("1", "mod"); err != nil {
		t.Fatal(err)
	}
	if got := r.Role(1); got != types.RoleOwner {
		t.Errorf("Role(owner) = %q, want owner", got)
	}

	// Revoking an owner has no effect on resolution.
	if err := r.Revoke(1); err != nil {
		t.Fatal(err)
	}
	if got := r.Role(1); got != types.RoleOwner {
		t.Errorf("Role(owner) after revoke = %q, want owner", got)
	}
}

func TestGrantResolveRevoke(t *testing.T) {
	r, _ := newTestResolver(t, []int64{1})

	if got := r.Role(50); got != types.RoleNone {
		t.Errorf("unassigned Role = %q, want none", got)
	}

	if err := r.Grant(50, types.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if got := r.Role(50); got != types.RoleAdmin {
		t.Errorf("Role after grant = %q, want admin", got)
	}

	if err := r.Grant(60, types.RoleMod); err != nil {
		t.Fatal(err)
	}
	if got := r.Role(60); got != types.RoleMod {
		t.Errorf("Role after mod grant = %q, want mod", got)
	}

	if err := r.Revoke(50); err != nil {
		t.Fatal(err)
	}
	if got := r.Role(50); got != types.RoleNone {
		t.Errorf("Role after revoke = %q, want none", got)
	}
}

func TestIsPrivileged(t *testing.T) {
	r, _ := newTestResolver(t, []int64{1})
	if err := r.Grant(2, types.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if err := r.Grant(3, types.RoleMod); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		id   int64
		want bool
	}{
		{1, true},  // owner
		{2, true},  // admin
		{3, true},  // mod
		{4, false}, // none
	}
	for _, tt := range tests {
		if got := r.IsPrivileged(tt.id); got != tt.want {
			t.Errorf("IsPrivileged(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
