package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/core/port"
	"github.com/JLCarveth/blog/internal/repository"
)

// BlocklistRepository persists banned client addresses.
type BlocklistRepository struct {
	db      Querier
	builder squirrel.StatementBuilderType
}

// NewBlocklistRepository constructs a PostgreSQL-backed blocklist repository.
func NewBlocklistRepository(db Querier) *BlocklistRepository {
	return &BlocklistRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListBlocked retrieves every banned address.
func (r *BlocklistRepository) ListBlocked(ctx context.Context) ([]domain.BlockedAddress, error) {
	stmt, args, err := r.builder.Select("id", "address", "reason", "ban_date").
		From("blog.blocked_addresses").
		OrderBy("ban_date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list blocked addresses sql: %w", err)
	}

	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query blocked addresses: %w", err)
	}
	defer rows.Close()

	var blocked []domain.BlockedAddress
	for rows.Next() {
		var entry domain.BlockedAddress
		if err := rows.Scan(&entry.ID, &entry.Address, &entry.Reason, &entry.BanDate); err != nil {
			return nil, fmt.Errorf("scan blocked address: %w", err)
		}
		blocked = append(blocked, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked addresses: %w", err)
	}

	return blocked, nil
}

// Insert stores a banned address. The address is normalized before storage
// so IPv4-mapped and plain IPv4 forms collapse to one row.
func (r *BlocklistRepository) Insert(ctx context.Context, entry domain.BlockedAddress) error {
	stmt, args, err := r.builder.Insert("blog.blocked_addresses").
		Columns("id", "address", "reason", "ban_date").
		Values(entry.ID, domain.NormalizeAddress(entry.Address), entry.Reason, entry.BanDate).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert blocked address sql: %w", err)
	}

	if _, err := r.db.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert blocked address: %w", err)
	}

	return nil
}

// Remove lifts the ban on an address.
func (r *BlocklistRepository) Remove(ctx context.Context, address string) error {
	stmt, args, err := r.builder.Delete("blog.blocked_addresses").
		Where(squirrel.Eq{"address": domain.NormalizeAddress(address)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete blocked address sql: %w", err)
	}

	res, err := r.db.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete blocked address: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.BlocklistRepository = (*BlocklistRepository)(nil)
