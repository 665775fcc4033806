package port

import (
	"context"

	"github.com/JLCarveth/blog/internal/core/domain"
)

// RoleRepository handles role persistence. List returns every role with its
// full permission set; the permission cache rebuilds its snapshot from it.
type RoleRepository interface {
	Create(ctx context.Context, role domain.Role) error
	List(ctx context.Context) ([]domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	GrantPermissions(ctx context.Context, name string, permissions []string) error
	RevokePermissions(ctx context.Context, name string, permissions []string) error
}
