package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bidmarket/internal/domain"
	"bidmarket/internal/repos"
	"bidmarket/internal/validate"
)

var ErrBadCreds = errors.New("invalid username or password")

// RevocationStore remembers logged-out token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthService struct {
	Users   *repos.UserRepo
	Tokens  *TokenIssuer
	Revoked RevocationStore
	Cost    int
}

func NewAuthService(users *repos.UserRepo, tokens *TokenIssuer, revoked RevocationStore, cost int) *AuthService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{Users: users, Tokens: tokens, Revoked: revoked, Cost: cost}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// Register creates a user. An empty role means customer.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username, ok := validate.Username(in.Username)
	if !ok {
		return nil, domain.Invalid("username must be 1-50 characters")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, domain.Invalid("a valid email address of at most 120 characters is required")
	}
	if !validate.Password(in.Password) {
		return nil, domain.Invalid("password must be 1-72 characters")
	}
	role := domain.RoleCustomer
	if in.Role != "" {
		if role, ok = validate.Role(in.Role); !ok {
			return nil, domain.Invalid("role must be admin or customer")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Username: username, Email: email, Hash: string(hash), Role: role}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks credentials and issues a signed token for the user.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	u, err := s.Users.ByUsername(ctx, username)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, "", ErrBadCreds
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	tok, _, err := s.Tokens.Issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Authenticate verifies a bearer token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (Identity, error) {
	id, err := s.Tokens.Parse(raw)
	if err != nil {
		return Identity{}, err
	}
	revoked, err := s.Revoked.IsRevoked(ctx, id.TokenID)
	if err != nil {
		return Identity{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Identity{}, domain.Unauthorized("Token has been revoked")
	}
	return id, nil
}

// Authorize loads the caller's stored role and allows the call only when
// it is one of required. The role carried in the token is ignored.
func (s *AuthService) Authorize(ctx context.Context, id Identity, required ...domain.Role) (*domain.User, error) {
	u, err := s.Users.ByID(ctx, id.UserID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.Unauthorized("User no longer exists")
		}
		return nil, err
	}
	if !domain.Allow(u.Role, required...) {
		return nil, domain.RoleRequired(required...)
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, id Identity) error {
	return s.Revoked.Revoke(ctx, id.TokenID, id.ExpiresAt)
}

func (s *AuthService) CurrentUser(ctx context.Context, id Identity) (*domain.User, error) {
	return s.Users.ByID(ctx, id.UserID)
}
