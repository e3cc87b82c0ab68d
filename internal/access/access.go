package access

import (
	"log"
	"sort"
	"strconv"

	"github.com/spidybot/mediagrab/types"
)

// Resolver maps a numeric identity to a role. The static owner list
// always wins over the persisted role map and cannot be altered at
// runtime.
type Resolver struct {
	owners map[int64]struct{}
	cfg    types.ConfigStore
}

func NewResolver(ownerIDs []int64, cfg types.ConfigStore) *Resolver {
	owners := make(map[int64]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = struct{}{}
	}
	return &Resolver{owners: owners, cfg: cfg}
}

func (r *Resolver) Role(userID int64) types.Role {
	if _, ok := r.owners[userID]; ok {
		return types.RoleOwner
	}
	roles, err := r.cfg.Roles()
	if err != nil {
		log.Printf("Role lookup for %d failed: %v", userID, err)
		return types.RoleNone
	}
	switch roles[strconv.FormatInt(userID, 10)] {
	case string(types.RoleAdmin):
		return types.RoleAdmin
	case string(types.RoleMod):
		return types.RoleMod
	}
	return types.RoleNone
}

// IsPrivileged reports whether the identity passes the admin gates.
// Admin and mod are functionally identical here.
func (r *Resolver) IsPrivileged(userID int64) bool {
	return r.Role(userID) != types.RoleNone
}

func (r *Resolver) IsOwner(userID int64) bool {
	_, ok := r.owners[userID]
	return ok
}

func (r *Resolver) Owners() []int64 {
	ids := make([]int64, 0, len(r.owners))
	for id := range r.owners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Grant stores a role assignment. Granting RoleNone revokes.
func (r *Resolver) Grant(userID int64, role types.Role) error {
	return r.cfg.SetRole(strconv.FormatInt(userID, 10), string(role))
}

func (r *Resolver) Revoke(userID int64) error {
	return r.Grant(userID, types.RoleNone)
}
