package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/core/port"
	"github.com/JLCarveth/blog/internal/repository"
)

var (
	// ErrPostNotFound indicates no post exists with the provided ID.
	ErrPostNotFound = errors.New("post not found")
	// ErrNotPostAuthor indicates the actor tried to edit a post they do
	// not own.
	ErrNotPostAuthor = errors.New("not the post author")
)

const defaultPostPageSize = 20

// PostService manages blog post lifecycle. Posts start unapproved and only
// show up in public listings after moderation.
type PostService struct {
	posts port.PostRepository
	log   *zap.Logger
	now   func() time.Time
}

// NewPostService constructs a PostService.
func NewPostService(posts port.PostRepository, log *zap.Logger) *PostService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostService{
		posts: posts,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreatePostInput captures the payload for creating a post.
type CreatePostInput struct {
	Title    string
	Subtitle string
	Content  string
	Tags     []string
}

// CreatePost stores a new unapproved post owned by the given account.
func (s *PostService) CreatePost(ctx context.Context, authorID string, input CreatePostInput) (*domain.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("content is required")
	}

	now := s.now()
	post := domain.Post{
		ID:        uuid.NewString(),
		Title:     title,
		Subtitle:  strings.TrimSpace(input.Subtitle),
		AuthorID:  authorID,
		Content:   input.Content,
		Tags:      input.Tags,
		Approved:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, storeError("create post", err)
	}

	s.log.Info("post created", zap.String("post_id", post.ID), zap.String("author_id", authorID))

	return &post, nil
}

// GetPost retrieves a single post. Each read counts as a view.
func (s *PostService) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeError("lookup post", err)
	}
	return post, nil
}

// ListPublished returns approved posts newest first.
func (s *PostService) ListPublished(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	if limit <= 0 {
		limit = defaultPostPageSize
	}
	if offset < 0 {
		offset = 0
	}

	posts, err := s.posts.ListApproved(ctx, limit, offset)
	if err != nil {
		return nil, storeError("list posts", err)
	}
	return posts, nil
}

// ListByAuthor returns every post owned by the account, drafts included.
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, storeError("list posts by author", err)
	}
	return posts, nil
}

// UpdatePost replaces the mutable fields of a post. Only the owning author
// may edit; editing clears the approval flag so the change is re-moderated.
func (s *PostService) UpdatePost(ctx context.Context, actorID, postID string, input CreatePostInput) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeError("lookup post", err)
	}

	if post.AuthorID != actorID {
		return nil, ErrNotPostAuthor
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		post.Title = title
	}
	if subtitle := strings.TrimSpace(input.Subtitle); subtitle != "" {
		post.Subtitle = subtitle
	}
	if strings.TrimSpace(input.Content) != "" {
		post.Content = input.Content
	}
	if input.Tags != nil {
		post.Tags = input.Tags
	}
	post.UpdatedAt = s.now()

	if err := s.posts.Update(ctx, *post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeError("update post", err)
	}

	if post.Approved {
		if err := s.posts.SetApproved(ctx, post.ID, false); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, storeError("reset approval", err)
		}
		post.Approved = false
	}

	return post, nil
}

// ApprovePost publishes a post.
func (s *PostService) ApprovePost(ctx context.Context, id string) error {
	if err := s.posts.SetApproved(ctx, id, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return storeError("approve post", err)
	}

	s.log.Info("post approved", zap.String("post_id", id))

	return nil
}

// DeletePost removes a post.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return storeError("delete post", err)
	}

	s.log.Info("post deleted", zap.String("post_id", id))

	return nil
}
