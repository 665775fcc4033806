package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/core/port"
	"github.com/JLCarveth/blog/internal/repository"
)

// RoleRepository implements role persistence operations.
type RoleRepository struct {
	db      Querier
	builder squirrel.StatementBuilderType
}

// NewRoleRepository constructs a PostgreSQL-backed role repository.
func NewRoleRepository(db Querier) *RoleRepository {
	return &RoleRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *RoleRepository) WithTx(tx pgx.Tx) *RoleRepository {
	if tx == nil {
		return r
	}
	return &RoleRepository{
		db:      tx,
		builder: r.builder,
	}
}

// Create inserts a new role along with its initial permission set.
func (r *RoleRepository) Create(ctx context.Context, role domain.Role) error {
	stmt, args, err := r.builder.Insert("blog.roles").
		Columns("id", "name").
		Values(role.ID, role.Name).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert role sql: %w", err)
	}

	if _, err := r.db.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert role: %w", err)
	}

	if len(role.Permissions) == 0 {
		return nil
	}

	return r.insertPermissions(ctx, role.ID, role.Permissions)
}

// List retrieves every role with its full permission set, sorted by name.
func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	stmt, args, err := r.builder.Select("id", "name").
		From("blog.roles").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list roles sql: %w", err)
	}

	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	index := make(map[string]int)

	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		index[role.ID] = len(roles)
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	permStmt, permArgs, err := r.builder.Select("role_id", "permission").
		From("blog.role_permissions").
		OrderBy("permission ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list role permissions sql: %w", err)
	}

	permRows, err := r.db.Query(ctx, permStmt, permArgs...)
	if err != nil {
		return nil, fmt.Errorf("query role permissions: %w", err)
	}
	defer permRows.Close()

	for permRows.Next() {
		var roleID, permission string
		if err := permRows.Scan(&roleID, &permission); err != nil {
			return nil, fmt.Errorf("scan role permission: %w", err)
		}
		if i, ok := index[roleID]; ok {
			roles[i].Permissions = append(roles[i].Permissions, permission)
		}
	}

	if err := permRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role permissions: %w", err)
	}

	return roles, nil
}

// GetByName retrieves a role and its permissions by the role's unique name.
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	stmt, args, err := r.builder.Select("id", "name").
		From("blog.roles").
		Where(squirrel.Eq{"name": name}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role by name sql: %w", err)
	}

	row := r.db.QueryRow(ctx, stmt, args...)

	var role domain.Role
	if err := row.Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan role by name: %w", err)
	}

	permissions, err := r.permissionsFor(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	role.Permissions = permissions

	return &role, nil
}

// GrantPermissions attaches permissions to a role. Already granted
// permissions are skipped.
func (r *RoleRepository) GrantPermissions(ctx context.Context, name string, permissions []string) error {
	role, err := r.GetByName(ctx, name)
	if err != nil {
		return err
	}

	if len(permissions) == 0 {
		return nil
	}

	return r.insertPermissions(ctx, role.ID, permissions)
}

// RevokePermissions detaches permissions from a role.
func (r *RoleRepository) RevokePermissions(ctx context.Context, name string, permissions []string) error {
	role, err := r.GetByName(ctx, name)
	if err != nil {
		return err
	}

	if len(permissions) == 0 {
		return nil
	}

	stmt, args, err := r.builder.Delete("blog.role_permissions").
		Where(squirrel.Eq{"role_id": role.ID, "permission": permissions}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke permissions sql: %w", err)
	}

	if _, err := r.db.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("revoke permissions: %w", err)
	}

	return nil
}

func (r *RoleRepository) insertPermissions(ctx context.Context, roleID string, permissions []string) error {
	insert := r.builder.Insert("blog.role_permissions").
		Columns("role_id", "permission").
		Suffix("ON CONFLICT (role_id, permission) DO NOTHING")

	for _, permission := range permissions {
		insert = insert.Values(roleID, permission)
	}

	stmt, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build grant permissions sql: %w", err)
	}

	if _, err := r.db.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("grant permissions: %w", err)
	}

	return nil
}

func (r *RoleRepository) permissionsFor(ctx context.Context, roleID string) ([]string, error) {
	stmt, args, err := r.builder.Select("permission").
		From("blog.role_permissions").
		Where(squirrel.Eq{"role_id": roleID}).
		OrderBy("permission ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role permissions sql: %w", err)
	}

	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query role permissions: %w", err)
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var permission string
		if err := rows.Scan(&permission); err != nil {
			return nil, fmt.Errorf("scan role permission: %w", err)
		}
		permissions = append(permissions, permission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role permissions: %w", err)
	}

	return permissions, nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
