package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/core/port"
	"github.com/JLCarveth/blog/internal/repository"
)

// PostRepository implements blog post persistence operations.
type PostRepository struct {
	db      Querier
	builder squirrel.StatementBuilderType
}

// NewPostRepository constructs a PostgreSQL-backed post repository.
func NewPostRepository(db Querier) *PostRepository {
	return &PostRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const postColumns = "id, title, subtitle, author_id, content, tags, approved, views, created_at, updated_at"

var postColumnList = []string{"id", "title", "subtitle", "author_id", "content", "tags", "approved", "views", "created_at", "updated_at"}

// Create inserts a new post.
func (r *PostRepository) Create(ctx context.Context, post domain.Post) error {
	stmt, args, err := r.builder.Insert("blog.posts").
		Columns(postColumnList...).
		Values(post.ID, post.Title, post.Subtitle, post.AuthorID, post.Content, post.Tags, post.Approved, post.Views, post.CreatedAt, post.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert post sql: %w", err)
	}

	if _, err := r.db.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// GetByID retrieves a post and bumps its view counter.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	stmt, args, err := r.builder.Update("blog.posts").
		Set("views", squirrel.Expr("views + 1")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + postColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select post sql: %w", err)
	}

	row := r.db.QueryRow(ctx, stmt, args...)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}

	return post, nil
}

// ListApproved retrieves published posts newest first.
func (r *PostRepository) ListApproved(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	query := r.builder.Select(postColumnList...).
		From("blog.posts").
		Where(squirrel.Eq{"approved": true}).
		OrderBy("created_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list approved posts sql: %w", err)
	}

	return r.queryPosts(ctx, stmt, args)
}

// ListByAuthor retrieves every post written by the given account,
// including drafts awaiting approval.
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	stmt, args, err := r.builder.Select(postColumnList...).
		From("blog.posts").
		Where(squirrel.Eq{"author_id": authorID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list posts by author sql: %w", err)
	}

	return r.queryPosts(ctx, stmt, args)
}

// Update replaces the mutable fields of a post.
func (r *PostRepository) Update(ctx context.Context, post domain.Post) error {
	stmt, args, err := r.builder.Update("blog.posts").
		Set("title", post.Title).
		Set("subtitle", post.Subtitle).
		Set("content", post.Content).
		Set("tags", post.Tags).
		Set("updated_at", post.UpdatedAt).
		Where(squirrel.Eq{"id": post.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update post sql: %w", err)
	}

	res, err := r.db.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetApproved flips the publication flag on a post.
func (r *PostRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	stmt, args, err := r.builder.Update("blog.posts").
		Set("approved", approved).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build approve post sql: %w", err)
	}

	res, err := r.db.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("approve post: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a post.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("blog.posts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete post sql: %w", err)
	}

	res, err := r.db.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *PostRepository) queryPosts(ctx context.Context, stmt string, args []any) ([]domain.Post, error) {
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Subtitle,
		&post.AuthorID,
		&post.Content,
		&post.Tags,
		&post.Approved,
		&post.Views,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &post, nil
}

var _ port.PostRepository = (*PostRepository)(nil)
