package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/stockroom-ims/stockroom/internal/platform/db"
	"github.com/stockroom-ims/stockroom/internal/shared"
)

// Repository defines persistence operations for accounts.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, u User) error
	Count(ctx context.Context) (int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	tx *db.TxManager
	sq squirrel.StatementBuilderType
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(tx *db.TxManager) *PGRepository {
	return &PGRepository{tx: tx, sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

// FindByUsername fetches an account by its exact username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (User, error) {
	sql, args, err := r.sq.Select("id", "username", "first_name", "last_name", "password_hash", "created_at").
		From("users").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return User{}, err
	}
	var u User
	if err := pgxscan.Get(ctx, r.tx.Querier(ctx), &u, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// Create inserts an account. A taken username maps to ErrUsernameTaken.
func (r *PGRepository) Create(ctx context.Context, u User) error {
	sql, args, err := r.sq.Insert("users").
		Columns("id", "username", "first_name", "last_name", "password_hash", "created_at").
		Values(u.ID, u.Username, u.FirstName, u.LastName, u.PasswordHash, u.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.tx.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Count returns the number of accounts.
func (r *PGRepository) Count(ctx context.Context) (int, error) {
	sql, args, err := r.sq.Select("count(*)").From("users").ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.tx.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

var _ Repository = (*PGRepository)(nil)
