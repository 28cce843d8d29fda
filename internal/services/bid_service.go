package services

//go:generate mockgen -source=bid_service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"bidmarket/internal/domain"
	"bidmarket/internal/validate"
)

type ProductLookup interface {
	ByID(ctx context.Context, id int64) (*domain.Product, error)
}

type BidStore interface {
	Create(ctx context.Context, b *domain.Bid) error
	List(ctx context.Context, f domain.BidFilter) ([]domain.Bid, error)
}

type Atomic interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
}

type BidService struct {
	Products ProductLookup
	Bids     BidStore
	Tx       Atomic
}

func NewBidService(products ProductLookup, bids BidStore, tx Atomic) *BidService {
	return &BidService{Products: products, Bids: bids, Tx: tx}
}

type BidInput struct {
	ProductID   int64
	Amount      float64
	BiddingTime string
	HighestBid  *float64
}

var errUnavailable = domain.Invalid("Product not available for bidding.")

// Place records a pending bid by bidder. The product must exist and be
// available; amount and highest_bid are stored as submitted.
func (s *BidService) Place(ctx context.Context, bidder *domain.User, in BidInput) (*domain.Bid, error) {
	if in.ProductID <= 0 {
		return nil, domain.Invalid("product_id is required")
	}
	if !validate.Amount(in.Amount) {
		return nil, domain.Invalid("amount must be a positive number")
	}
	at := domain.Now()
	if in.BiddingTime != "" {
		t, ok := validate.Timestamp(in.BiddingTime)
		if !ok {
			return nil, domain.Invalid("bidding_time must be an ISO-8601 timestamp")
		}
		at = domain.NewTimestamp(t)
	}
	highest := in.Amount
	if in.HighestBid != nil {
		if !validate.Amount(*in.HighestBid) {
			return nil, domain.Invalid("highest_bid must be a positive number")
		}
		highest = *in.HighestBid
	}

	var out *domain.Bid
	err := s.Tx.RunAtomic(ctx, func(ctx context.Context) error {
		p, err := s.Products.ByID(ctx, in.ProductID)
		if domain.KindOf(err) == domain.KindNotFound {
			return errUnavailable
		}
		if err != nil {
			return err
		}
		if p.Status != domain.ProductAvailable {
			return errUnavailable
		}
		b := &domain.Bid{
			UserID:      bidder.ID,
			Username:    bidder.Username,
			ProductID:   p.ID,
			ProductName: p.Name,
			Amount:      in.Amount,
			Status:      domain.BidPending,
			BiddingTime: at,
			HighestBid:  highest,
		}
		if err := s.Bids.Create(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

func (s *BidService) List(ctx context.Context, f domain.BidFilter) ([]domain.Bid, error) {
	return s.Bids.List(ctx, f)
}
