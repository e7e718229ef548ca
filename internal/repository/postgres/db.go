package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rrens/salespulse/internal/config"
	"github.com/Rrens/salespulse/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the database connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB creates a new database connection pool
func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// NewDBFromPool wraps an existing pool
func NewDBFromPool(pool *pgxpool.Pool) *DB {
	return &DB{Pool: pool}
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping verifies database connectivity
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// whereBuilder accumulates AND-ed conditions with positional arguments
type whereBuilder struct {
	conds []string
	args  []any
	// filterArgs is the number of args bound by conditions, before paging
	filterArgs int
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) raw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the clause
func (w *whereBuilder) page(p domain.PageRequest) string {
	n := p.Normalize()
	w.filterArgs = len(w.args)
	w.args = append(w.args, n.Limit, p.Offset())
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

// countPastPage returns the match count for a page that came back empty.
// COUNT(*) OVER() only rides along on returned rows, so a page past the end
// would otherwise report zero matches.
func (db *DB) countPastPage(ctx context.Context, from string, where *whereBuilder, p domain.PageRequest) (int, error) {
	if p.Offset() == 0 {
		return 0, nil
	}

	var total int
	query := `SELECT COUNT(*) FROM ` + from + ` ` + where.sql()
	if err := db.Pool.QueryRow(ctx, query, where.args[:where.filterArgs]...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return total, nil
}

// orderBy resolves sortBy against an allow-list so column names never come
// from user input directly.
func orderBy(columns map[string]string, sortBy, fallback string, order domain.SortOrder) string {
	column, ok := columns[sortBy]
	if !ok {
		column = fallback
	}
	dir := "DESC"
	if order == domain.SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", column, dir, dir)
}

func stringPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
