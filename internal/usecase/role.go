package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/core/port"
	"github.com/JLCarveth/blog/internal/repository"
)

var (
	// ErrRoleExists indicates a role with the provided name already exists.
	ErrRoleExists = errors.New("role already exists")
	// ErrRoleNotFound indicates no role exists with the provided name.
	ErrRoleNotFound = errors.New("role not found")
)

// seedRoles is the role table installed on first boot. Existing roles are
// never overwritten, so operator changes survive restarts.
var seedRoles = []domain.Role{
	{Name: "user", Permissions: []string{"readPost", "commentPost", "votePost"}},
	{Name: "author", Permissions: []string{"readPost", "createPost", "editPostSelf", "commentPost", "votePost"}},
	{Name: "admin", Permissions: []string{
		"readPost", "createPost", "editPostSelf", "commentPost", "votePost",
		"approvePost", "deletePost", "modifyRole", "deleteUser", "banIP",
	}},
}

// RoleService manages the role table. Every mutation refreshes the
// permission cache so the request gate sees the change immediately.
type RoleService struct {
	roles port.RoleRepository
	cache *PermissionCache
	log   *zap.Logger
}

// NewRoleService constructs a RoleService.
func NewRoleService(roles port.RoleRepository, cache *PermissionCache, log *zap.Logger) *RoleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoleService{roles: roles, cache: cache, log: log}
}

// CreateRole provisions a new role with an optional initial permission set.
func (s *RoleService) CreateRole(ctx context.Context, name string, permissions []string) (*domain.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("role name is required")
	}

	role := domain.Role{
		ID:          uuid.NewString(),
		Name:        name,
		Permissions: normalizePermissions(permissions),
	}

	if err := s.roles.Create(ctx, role); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRoleExists
		}
		return nil, storeError("create role", err)
	}

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}

	s.log.Info("role created", zap.String("role", role.Name), zap.Strings("permissions", role.Permissions))

	return &role, nil
}

// GrantPermissions attaches permissions to an existing role.
func (s *RoleService) GrantPermissions(ctx context.Context, name string, permissions []string) error {
	permissions = normalizePermissions(permissions)
	if len(permissions) == 0 {
		return fmt.Errorf("at least one permission is required")
	}

	if err := s.roles.GrantPermissions(ctx, name, permissions); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return storeError("grant permissions", err)
	}

	if err := s.refresh(ctx); err != nil {
		return err
	}

	s.log.Info("permissions granted", zap.String("role", name), zap.Strings("permissions", permissions))

	return nil
}

// RevokePermissions detaches permissions from an existing role.
func (s *RoleService) RevokePermissions(ctx context.Context, name string, permissions []string) error {
	permissions = normalizePermissions(permissions)
	if len(permissions) == 0 {
		return fmt.Errorf("at least one permission is required")
	}

	if err := s.roles.RevokePermissions(ctx, name, permissions); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return storeError("revoke permissions", err)
	}

	if err := s.refresh(ctx); err != nil {
		return err
	}

	s.log.Info("permissions revoked", zap.String("role", name), zap.Strings("permissions", permissions))

	return nil
}

// ListRoles returns the full role table.
func (s *RoleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, storeError("list roles", err)
	}
	return roles, nil
}

// SeedDefaults installs the built-in roles that do not exist yet and
// refreshes the permission cache.
func (s *RoleService) SeedDefaults(ctx context.Context) error {
	for _, seed := range seedRoles {
		role := domain.Role{
			ID:          uuid.NewString(),
			Name:        seed.Name,
			Permissions: seed.Permissions,
		}
		if err := s.roles.Create(ctx, role); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return storeError("seed role", err)
		}
		s.log.Info("role seeded", zap.String("role", role.Name))
	}

	return s.refresh(ctx)
}

func (s *RoleService) refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Refresh(ctx)
}

func normalizePermissions(permissions []string) []string {
	out := make([]string, 0, len(permissions))
	seen := make(map[string]struct{}, len(permissions))
	for _, permission := range permissions {
		permission = strings.TrimSpace(permission)
		if permission == "" {
			continue
		}
		if _, dup := seen[permission]; dup {
			continue
		}
		seen[permission] = struct{}{}
		out = append(out, permission)
	}
	return out
}
