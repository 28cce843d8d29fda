package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bidmarket/internal/domain"
)

// Identity is what a verified token says about its bearer. Role is the
// role at issuance time and may be stale; authorization re-reads it.
type Identity struct {
	UserID    int64
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

type claims struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 identity tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer for secret. An empty secret is replaced
// by a random one, so tokens do not survive a restart.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	key := []byte(secret)
	if len(key) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
		key = []byte(hex.EncodeToString(buf))
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: key, ttl: ttl, now: time.Now}, nil
}

func (t *TokenIssuer) Issue(u *domain.User) (string, Identity, error) {
	now := t.now()
	id := Identity{
		UserID:    u.ID,
		Role:      u.Role,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(t.ttl),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.TokenID,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(id.ExpiresAt),
		},
	})
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", Identity{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, id, nil
}

// Parse verifies signature and expiry. Every failure is Unauthorized.
func (t *TokenIssuer) Parse(raw string) (Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Identity{}, domain.Unauthorized("Invalid or expired token")
	}
	if c.UserID == 0 || c.ID == "" {
		return Identity{}, domain.Unauthorized("Invalid or expired token")
	}
	return Identity{
		UserID:    c.UserID,
		Role:      c.Role,
		TokenID:   c.ID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
