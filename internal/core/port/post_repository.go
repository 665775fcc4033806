package port

import (
	"context"

	"github.com/JLCarveth/blog/internal/core/domain"
)

// PostRepository exposes persistence behavior for blog posts.
type PostRepository interface {
	Create(ctx context.Context, post domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	ListApproved(ctx context.Context, limit, offset int) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error)
	Update(ctx context.Context, post domain.Post) error
	SetApproved(ctx context.Context, id string, approved bool) error
	Delete(ctx context.Context, id string) error
}
