package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// OpenDB connects with driver ("sqlite" or "postgres") and ensures the schema.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// One connection keeps :memory: databases and PRAGMAs consistent.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "postgres" {
		schema = postgresSchema
	}
	_, err := db.Exec(schema)
	return err
}

const sqliteSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE CHECK (length(username) <= 50),
  email TEXT NOT NULL UNIQUE CHECK (length(email) <= 120),
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'customer' CHECK (role IN ('admin','customer')),
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL CHECK (length(name) <= 30),
  description TEXT NOT NULL,
  price REAL NOT NULL CHECK (price > 0),
  quantity INTEGER,
  status TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available','sold')),
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  bidding_deadline TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_status ON products(status);
CREATE INDEX IF NOT EXISTS idx_products_user   ON products(user_id);

CREATE TABLE IF NOT EXISTS bids(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  amount REAL NOT NULL CHECK (amount > 0),
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','accepted','rejected')),
  bidding_time TEXT NOT NULL,
  highest_bid REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bids_product ON bids(product_id);

CREATE TABLE IF NOT EXISTS revoked_tokens(
  jti TEXT PRIMARY KEY,
  expires_at TEXT NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users(
  id BIGSERIAL PRIMARY KEY,
  username VARCHAR(50) NOT NULL UNIQUE,
  email VARCHAR(120) NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role VARCHAR(20) NOT NULL DEFAULT 'customer' CHECK (role IN ('admin','customer')),
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products(
  id BIGSERIAL PRIMARY KEY,
  name VARCHAR(30) NOT NULL,
  description TEXT NOT NULL,
  price DOUBLE PRECISION NOT NULL CHECK (price > 0),
  quantity BIGINT,
  status VARCHAR(20) NOT NULL DEFAULT 'available' CHECK (status IN ('available','sold')),
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  bidding_deadline TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_status ON products(status);
CREATE INDEX IF NOT EXISTS idx_products_user   ON products(user_id);

CREATE TABLE IF NOT EXISTS bids(
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  amount DOUBLE PRECISION NOT NULL CHECK (amount > 0),
  status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','accepted','rejected')),
  bidding_time TEXT NOT NULL,
  highest_bid DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bids_product ON bids(product_id);

CREATE TABLE IF NOT EXISTS revoked_tokens(
  jti TEXT PRIMARY KEY,
  expires_at TEXT NOT NULL
);
`

type txKey struct{}

// dbtx is satisfied by both *sqlx.DB and *sqlx.Tx.
type dbtx interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
}

// conn returns the transaction carried by ctx, falling back to db.
func conn(ctx context.Context, db *sqlx.DB) dbtx {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

func get(ctx context.Context, db *sqlx.DB, dest any, query string, args ...any) error {
	q := conn(ctx, db)
	return q.GetContext(ctx, dest, q.Rebind(query), args...)
}

func sel(ctx context.Context, db *sqlx.DB, dest any, query string, args ...any) error {
	q := conn(ctx, db)
	return q.SelectContext(ctx, dest, q.Rebind(query), args...)
}

func exec(ctx context.Context, db *sqlx.DB, query string, args ...any) (sql.Result, error) {
	q := conn(ctx, db)
	return q.ExecContext(ctx, q.Rebind(query), args...)
}

// Store runs groups of repository calls in one transaction.
type Store struct{ DB *sqlx.DB }

func NewStore(db *sqlx.DB) *Store { return &Store{DB: db} }

// RunAtomic executes fn within a transaction. Repository calls made with
// the ctx handed to fn use that transaction. Nested calls join the outer one.
func (s *Store) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) && sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func affectedOne(res sql.Result) bool {
	n, err := res.RowsAffected()
	return err == nil && n > 0
}
