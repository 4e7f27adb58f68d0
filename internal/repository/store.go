package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/shop-service/internal/domain"
)

// DBTX is the subset of database/sql used by repositories.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store groups the repositories that share one database handle.
type Store interface {
	Users() UserRepository
	Products() ProductRepository
	Orders() OrderRepository
	// WithinTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calls nested inside fn reuse the outer transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type sqlStore struct {
	conn     *sql.DB
	users    UserRepository
	products ProductRepository
	orders   OrderRepository
}

// NewStore returns a Postgres-backed Store.
func NewStore(db *sql.DB) Store {
	return newSQLStore(db, db)
}

func newSQLStore(db DBTX, conn *sql.DB) *sqlStore {
	return &sqlStore{
		conn:     conn,
		users:    NewUserRepository(db),
		products: NewProductRepository(db),
		orders:   NewOrderRepository(db),
	}
}

func (s *sqlStore) Users() UserRepository       { return s.users }
func (s *sqlStore) Products() ProductRepository { return s.products }
func (s *sqlStore) Orders() OrderRepository     { return s.orders }

func (s *sqlStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) (err error) {
	if s.conn == nil {
		return fn(ctx, s)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, newSQLStore(tx, nil))
}

const (
	pgUniqueViolation   = "23505"
	pgInvalidTextFormat = "22P02"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// notFound maps missing rows and malformed ids to domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) || pgCode(err) == pgInvalidTextFormat {
		return domain.ErrNotFound
	}
	return err
}
