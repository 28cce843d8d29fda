package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bidmarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

const userCols = `id,username,email,password_hash,role,created_at`

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) ByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := get(ctx, r.db, &u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := get(ctx, r.db, &u, `SELECT `+userCols+` FROM users WHERE username=?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	out := []domain.User{}
	err := sel(ctx, r.db, &out, `SELECT `+userCols+` FROM users ORDER BY id`)
	return out, err
}

// Create inserts u and sets its ID. Duplicate username or email is a
// validation error.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = domain.Now()
	}
	err := get(ctx, r.db, &u.ID, `
		INSERT INTO users(username,email,password_hash,role,created_at)
		VALUES(?,?,?,?,?)
		RETURNING id`, u.Username, u.Email, u.Hash, string(u.Role), u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Invalid("User already exists")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	res, err := exec(ctx, r.db, `
		UPDATE users SET username=?, email=?, password_hash=?, role=?
		WHERE id=?`, u.Username, u.Email, u.Hash, string(u.Role), u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Invalid("username or email already taken")
		}
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	if !affectedOne(res) {
		return domain.NotFound("User not found")
	}
	return nil
}

// Delete removes the user; their products and bids go with them.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res, err := exec(ctx, r.db, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if !affectedOne(res) {
		return domain.NotFound("User not found")
	}
	return nil
}
