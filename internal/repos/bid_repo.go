package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bidmarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

const bidSelect = `
	SELECT b.id, b.user_id, COALESCE(u.username,'Unknown') AS username,
	       b.product_id, COALESCE(p.name,'Unknown') AS product_name,
	       b.amount, b.status, b.bidding_time, b.highest_bid
	FROM bids b
	LEFT JOIN users u ON u.id = b.user_id
	LEFT JOIN products p ON p.id = b.product_id`

type BidRepo struct{ db *sqlx.DB }

func NewBidRepo(db *sqlx.DB) *BidRepo { return &BidRepo{db: db} }

// Create inserts b and sets its ID. Username and ProductName are left as given.
func (r *BidRepo) Create(ctx context.Context, b *domain.Bid) error {
	if b.Status == "" {
		b.Status = domain.BidPending
	}
	err := get(ctx, r.db, &b.ID, `
		INSERT INTO bids(user_id,product_id,amount,status,bidding_time,highest_bid)
		VALUES(?,?,?,?,?,?)
		RETURNING id`,
		b.UserID, b.ProductID, b.Amount, string(b.Status), b.BiddingTime, b.HighestBid)
	if err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}
	return nil
}

func (r *BidRepo) ByID(ctx context.Context, id int64) (*domain.Bid, error) {
	var b domain.Bid
	err := get(ctx, r.db, &b, bidSelect+` WHERE b.id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Bid not found")
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BidRepo) List(ctx context.Context, f domain.BidFilter) ([]domain.Bid, error) {
	var where []string
	var args []any
	if f.ProductID != 0 {
		where = append(where, `b.product_id = ?`)
		args = append(args, f.ProductID)
	}
	if f.UserID != 0 {
		where = append(where, `b.user_id = ?`)
		args = append(args, f.UserID)
	}
	q := bidSelect
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY b.id`

	out := []domain.Bid{}
	err := sel(ctx, r.db, &out, q, args...)
	return out, err
}
