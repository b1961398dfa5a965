package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-user-accounts/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	uniqueViolation = "23505"
	constraintEmail = "users_email_key"
	constraintPhone = "users_phone_number_key"
)

const userColumns = "id, user_name, email, password_hash, phone_number, role, address, created_at, updated_at"

const createUsersTableDDL = `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			user_name     TEXT NOT NULL,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			phone_number  TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'user',
			address       TEXT,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL,
			CONSTRAINT users_email_key UNIQUE (email),
			CONSTRAINT users_phone_number_key UNIQUE (phone_number)
		)`

// UserRepo stores users in PostgreSQL. Uniqueness is enforced by table constraints.
type UserRepo struct {
	db  DBTX
	log *zap.Logger
}

func NewUserRepo(db DBTX, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// EnsureSchema creates the users table if it is missing.
func (r *UserRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createUsersTableDDL); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		u.UserID,
		u.UserName,
		u.Email,
		u.PasswordHash,
		u.PhoneNumber,
		u.Role,
		u.Address,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if cerr := conflictFromPg(err); cerr != nil {
			return cerr
		}
		r.log.Error("Failed to create user", zap.Error(err), zap.String("email", u.Email))
		return domain.Unavailable("postgres create user", err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, "id", userID)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepo) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(ctx, "phone_number", phone)
}

func (r *UserRepo) ListAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, domain.Unavailable("postgres list users", err)
	}
	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.User])
	if err != nil {
		return nil, domain.Unavailable("postgres list users", err)
	}
	return users, nil
}

// findOne looks a user up by a fixed column name; column is never caller input.
func (r *UserRepo) findOne(ctx context.Context, column, value string) (*domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	if err != nil {
		return nil, domain.Unavailable("postgres find user", err)
	}
	u, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[domain.User])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.Unavailable("postgres find user", err)
	}
	return u, nil
}

// conflictFromPg maps a unique violation to a Conflict naming the colliding field.
func conflictFromPg(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	if pgErr.ConstraintName == constraintPhone {
		return domain.WrapError(domain.ErrConflict, domain.MsgPhoneExists, err)
	}
	return domain.WrapError(domain.ErrConflict, domain.MsgEmailExists, err)
}
