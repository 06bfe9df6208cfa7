package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/status"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/user"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/user/entity"
)

// emailConstraint is the name Postgres gives the UNIQUE on users.email.
const emailConstraint = "users_email_key"

// UserRepo provides data access for users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, role_id, first_name, last_name, avatar, phone, email, address, bio, join_date, status, password`

// Create inserts a new user row. A duplicate email reports user.ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :role_id, :first_name, :last_name, :avatar, :phone, :email, :address, :bio, :join_date, :status, :password)`
	_, err := r.db.NamedExecContext(ctx, q, u)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == emailConstraint {
		return user.ErrEmailTaken
	}
	return err
}

// GetByID returns the user or nil when absent.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail returns the user or nil when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := status.User.Validate(u.Status); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdatePassword stores a new password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, hash string) (bool, error) {
	return r.exec(ctx, `UPDATE users SET password = $2 WHERE id = $1`, id, hash)
}

// UpdateStatus stores a new status word.
func (r *UserRepo) UpdateStatus(ctx context.Context, id string, s status.Flags) (bool, error) {
	return r.exec(ctx, `UPDATE users SET status = $2 WHERE id = $1`, id, s)
}

func (r *UserRepo) exec(ctx context.Context, q string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
