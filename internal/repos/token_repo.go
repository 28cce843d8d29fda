package repos

import (
	"context"
	"fmt"
	"time"

	"bidmarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

// TokenRepo records revoked identity tokens until they would have expired.
type TokenRepo struct{ db *sqlx.DB }

func NewTokenRepo(db *sqlx.DB) *TokenRepo { return &TokenRepo{db: db} }

func (r *TokenRepo) Revoke(ctx context.Context, jti string, until time.Time) error {
	now := domain.Now()
	if _, err := exec(ctx, r.db, `DELETE FROM revoked_tokens WHERE expires_at < ?`, now); err != nil {
		return fmt.Errorf("purge revoked tokens: %w", err)
	}
	_, err := exec(ctx, r.db, `
		INSERT INTO revoked_tokens(jti, expires_at) VALUES(?, ?)
		ON CONFLICT(jti) DO NOTHING`, jti, domain.NewTimestamp(until))
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *TokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var n int
	if err := get(ctx, r.db, &n, `SELECT COUNT(*) FROM revoked_tokens WHERE jti=?`, jti); err != nil {
		return false, err
	}
	return n > 0, nil
}
