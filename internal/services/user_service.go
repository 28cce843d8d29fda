package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"bidmarket/internal/domain"
	"bidmarket/internal/repos"
	"bidmarket/internal/validate"
)

type UserService struct {
	Users *repos.UserRepo
	Store *repos.Store
	Cost  int
}

func NewUserService(users *repos.UserRepo, store *repos.Store, cost int) *UserService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{Users: users, Store: store, Cost: cost}
}

// UserPatch holds the fields a PATCH may change; nil means unchanged.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
	Role     *string
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Users.List(ctx)
}

// Get returns user id to an admin or to that user.
func (s *UserService) Get(ctx context.Context, caller *domain.User, id int64) (*domain.User, error) {
	if caller.ID != id && caller.Role != domain.RoleAdmin {
		return nil, domain.Forbidden("You can only view your own profile")
	}
	return s.Users.ByID(ctx, id)
}

// Patch applies p to user id. Callers may patch themselves; admins may
// patch anyone. Only admins may change a role.
func (s *UserService) Patch(ctx context.Context, caller *domain.User, id int64, p UserPatch) (*domain.User, error) {
	isAdmin := caller.Role == domain.RoleAdmin
	if caller.ID != id && !isAdmin {
		return nil, domain.Forbidden("You can only modify your own profile")
	}

	var out *domain.User
	err := s.Store.RunAtomic(ctx, func(ctx context.Context) error {
		u, err := s.Users.ByID(ctx, id)
		if err != nil {
			return err
		}
		if p.Username != nil {
			name, ok := validate.Username(*p.Username)
			if !ok {
				return domain.Invalid("username must be 1-50 characters")
			}
			u.Username = name
		}
		if p.Email != nil {
			email, ok := validate.Email(*p.Email)
			if !ok {
				return domain.Invalid("a valid email address of at most 120 characters is required")
			}
			u.Email = email
		}
		if p.Role != nil {
			role, ok := validate.Role(*p.Role)
			if !ok {
				return domain.Invalid("role must be admin or customer")
			}
			if role != u.Role && !isAdmin {
				return domain.RoleRequired(domain.RoleAdmin)
			}
			u.Role = role
		}
		if p.Password != nil {
			if !validate.Password(*p.Password) {
				return domain.Invalid("password must be 1-72 characters")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), s.Cost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			u.Hash = string(hash)
		}
		if err := s.Users.Update(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.Users.Delete(ctx, id)
}
