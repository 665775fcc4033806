package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/core/port"
)

// PermissionCache holds an in-memory snapshot of every role's permission
// set. Reads never touch the role store; Refresh rebuilds the snapshot
// atomically so concurrent readers always see a complete role table.
type PermissionCache struct {
	roles port.RoleRepository
	log   *zap.Logger

	mu       sync.RWMutex
	snapshot map[string]map[string]struct{}
}

// NewPermissionCache constructs an empty cache. Call Refresh before serving
// traffic; an empty cache denies everything.
func NewPermissionCache(roles port.RoleRepository, log *zap.Logger) *PermissionCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &PermissionCache{
		roles:    roles,
		log:      log,
		snapshot: make(map[string]map[string]struct{}),
	}
}

// Refresh replaces the snapshot with the current role table. On store
// failure the previous snapshot stays in place.
func (c *PermissionCache) Refresh(ctx context.Context) error {
	roles, err := c.roles.List(ctx)
	if err != nil {
		return storeError("list roles", err)
	}

	next := make(map[string]map[string]struct{}, len(roles))
	for _, role := range roles {
		perms := make(map[string]struct{}, len(role.Permissions))
		for _, permission := range role.Permissions {
			perms[permission] = struct{}{}
		}
		next[role.Name] = perms
	}

	c.mu.Lock()
	c.snapshot = next
	c.mu.Unlock()

	c.log.Info("permission cache refreshed", zap.Int("roles", len(next)))

	return nil
}

// HasPermission reports whether the role grants the named permission.
// Unknown roles deny and are logged once per call, since they usually mean
// a stale token or a misconfigured role table.
func (c *PermissionCache) HasPermission(role, permission string) bool {
	c.mu.RLock()
	perms, ok := c.snapshot[role]
	c.mu.RUnlock()

	if !ok {
		c.log.Warn("permission check against unknown role", zap.String("role", role))
		return false
	}

	_, granted := perms[permission]
	return granted
}

// Satisfies reports whether the role grants every permission the
// requirement names. An empty requirement is satisfied by any role.
func (c *PermissionCache) Satisfies(role string, requirement domain.Requirement) bool {
	if requirement.IsEmpty() {
		return true
	}
	for _, permission := range requirement.Permissions() {
		if !c.HasPermission(role, permission) {
			return false
		}
	}
	return true
}

// Roles returns the role names currently in the snapshot.
func (c *PermissionCache) Roles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.snapshot))
	for name := range c.snapshot {
		names = append(names, name)
	}
	return names
}
