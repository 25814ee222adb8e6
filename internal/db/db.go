package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/ctxutil"
)

// querier: общее у *sqlx.DB и *sqlx.Tx.
type querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Store: доступ к таблицам портала. Все методы ограничены ctxutil.WithDBTimeout.
type Store struct {
	pool *sqlx.DB
	db   querier
}

func New(database *sqlx.DB) *Store {
	return &Store{pool: database, db: database}
}

// DB: сырой пул (healthz, миграции).
func (s *Store) DB() *sqlx.DB { return s.pool }

// InTx выполняет fn в одной транзакции; Store внутри fn пишет через tx.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	tx, err := s.pool.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return apperr.Remote("db.InTx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Store{pool: s.pool, db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Remote("db.InTx", err)
	}
	return nil
}

// Open открывает пул через pgx stdlib и проверяет соединение.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	database, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	database.SetMaxOpenConns(20)
	database.SetMaxIdleConns(5)
	database.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return database, nil
}

// idArray: параметр для `= ANY($1::uuid[])`.
func idArray(ids []uuid.UUID) any {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return pq.Array(out)
}

// selectByIDs: одна выборка на весь набор ключей вместо запроса на каждую строку.
func selectByIDs[T any](ctx context.Context, s *Store, op, query string, ids []uuid.UUID) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	out := []T{}
	if err := s.db.SelectContext(ctx, &out, query, idArray(ids)); err != nil {
		return nil, apperr.Remote(op, err)
	}
	return out, nil
}

// getOne: «мягкий» поиск, нет строки → nil, nil.
func getOne[T any](ctx context.Context, s *Store, op, query string, args ...any) (*T, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var v T
	if err := s.db.GetContext(ctx, &v, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Remote(op, err)
	}
	return &v, nil
}

// returning: INSERT/UPDATE ... RETURNING *; отсутствие строки для UPDATE → NotFound.
func returning[T any](ctx context.Context, s *Store, op, query string, args ...any) (*T, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var v T
	if err := s.db.GetContext(ctx, &v, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound(op, "row not found")
		}
		return nil, apperr.Remote(op, err)
	}
	return &v, nil
}

func selectAll[T any](ctx context.Context, s *Store, op, query string, args ...any) ([]T, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	out := []T{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, apperr.Remote(op, err)
	}
	return out, nil
}

func (s *Store) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperr.Remote(op, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// execOne: UPDATE/DELETE по id; ноль затронутых строк → NotFound.
func (s *Store) execOne(ctx context.Context, op, query string, args ...any) error {
	n, err := s.exec(ctx, op, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(op, "row not found")
	}
	return nil
}

// setBuilder: «слить переданные поля», SET только для не-nil значений.
type setBuilder struct {
	sets []string
	args []any
}

func (b *setBuilder) add(column string, v any) {
	b.args = append(b.args, v)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *setBuilder) empty() bool { return len(b.sets) == 0 }

// query собирает UPDATE ... SET ..., updated_at = now() WHERE id = $N RETURNING *.
func (b *setBuilder) query(table string, id uuid.UUID) (string, []any) {
	args := append(b.args, id)
	q := "UPDATE " + table + " SET "
	for i, s := range b.sets {
		if i > 0 {
			q += ", "
		}
		q += s
	}
	q += fmt.Sprintf(", updated_at = now() WHERE id = $%d RETURNING *", len(args))
	return q, args
}
