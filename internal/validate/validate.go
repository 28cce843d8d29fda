package validate

import (
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"bidmarket/internal/domain"
)

var v = validator.New()

const (
	maxUsername    = 50
	maxEmail       = 120
	maxProductName = 30
	// bcrypt ignores everything past 72 bytes
	maxPassword = 72
)

// Username trims and enforces 1..50 characters.
func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len([]rune(s)) > maxUsername {
		return "", false
	}
	return s, true
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxEmail {
		return "", false
	}
	if err := v.Var(s, "email"); err != nil {
		return "", false
	}
	return s, true
}

func Password(s string) bool {
	return s != "" && len(s) <= maxPassword
}

func Role(s string) (domain.Role, bool) {
	r := domain.Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// ProductName trims and enforces 1..30 characters.
func ProductName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len([]rune(s)) > maxProductName {
		return "", false
	}
	return s, true
}

func ProductStatus(s string) (domain.ProductStatus, bool) {
	st := domain.ProductStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// Price and Amount must be finite and strictly positive.
func Price(f float64) bool { return positive(f) }

func Amount(f float64) bool { return positive(f) }

func Quantity(n int64) bool { return n >= 0 }

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp accepts RFC3339 and the naive ISO forms clients commonly
// send; naive values are taken as UTC.
func Timestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
