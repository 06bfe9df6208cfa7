package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/status"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/token"
)

// Table schema lives in pkg/database/migrations (tokens).

// TokenRepo persists tokens using sqlx.
type TokenRepo struct {
	db *sqlx.DB
}

func NewTokenRepo(db *sqlx.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// SaveToken inserts a new token row.
func (r *TokenRepo) SaveToken(ctx context.Context, t *token.Token) error {
	const q = `INSERT INTO tokens (id, user_id, token, valid_from, valid_until, status)
		VALUES (:id, :user_id, :token, :valid_from, :valid_until, :status)`
	_, err := r.db.NamedExecContext(ctx, q, t)
	return err
}

// FindTokenByValue returns the token or nil when absent. A stored status
// with bits outside status.Token is an error wrapping status.ErrUndefinedBits.
func (r *TokenRepo) FindTokenByValue(ctx context.Context, value string) (*token.Token, error) {
	const q = `SELECT id, user_id, token, valid_from, valid_until, status FROM tokens WHERE token = $1`
	var t token.Token
	if err := r.db.GetContext(ctx, &t, q, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := status.Token.Validate(t.Status); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTokenStatus overwrites the status word; reports whether a row matched.
func (r *TokenRepo) UpdateTokenStatus(ctx context.Context, value string, s status.Flags) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE tokens SET status = $2 WHERE token = $1`, value, s)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
