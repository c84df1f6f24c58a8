package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// DB is satisfied by *pgxpool.Pool and pgx.Tx, so every repository works the
// same inside or outside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	ErrDuplicate     = errors.New("duplicate_record")
	ErrNoRowsUpdated = errors.New("no_rows_updated")
)

// Store groups the repositories that share one transaction scope.
type Store interface {
	Properties() PropertyRepository
	Cities() CityRepository
}

// Transactor hands out transaction scopes. Everything fn does through the
// Store it receives commits together or not at all.
type Transactor interface {
	Store() Store
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	properties PropertyRepository
	cities     CityRepository
}

func NewStore(db DB) Store {
	return &pgStore{
		properties: NewPropertyRepository(db),
		cities:     NewCityRepository(db),
	}
}

func (s *pgStore) Properties() PropertyRepository { return s.properties }
func (s *pgStore) Cities() CityRepository         { return s.cities }

type PgTransactor struct {
	pool *pgxpool.Pool
}

func NewTransactor(pool *pgxpool.Pool) *PgTransactor {
	return &PgTransactor{pool: pool}
}

func (t *PgTransactor) Store() Store {
	return NewStore(t.pool)
}

// WithinTx runs fn in a READ COMMITTED transaction. The transaction is not
// tied to the caller's cancellation: once started it commits or rolls back on
// its own terms even if the client goes away.
func (t *PgTransactor) WithinTx(ctx context.Context, fn func(Store) error) (err error) {
	ctx = context.WithoutCancel(ctx)

	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	if err = fn(NewStore(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// nameKey is the SQL comparison key for a city name: whitespace-trimmed and
// lower-cased. The same expression backs the unique index on cities.
func nameKey(expr string) string {
	return `LOWER(BTRIM(` + expr + `, E' \t\n\r\f'))`
}

// likePattern builds an ILIKE substring pattern with wildcards in name escaped.
func likePattern(name string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(name)) + "%"
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
