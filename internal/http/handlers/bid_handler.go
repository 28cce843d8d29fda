package handlers

//go:generate mockgen -destination=../mock_bids_test.go -package=handlers_test bidmarket/internal/http/handlers Bids

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"bidmarket/internal/domain"
	applog "bidmarket/internal/log"
	"bidmarket/internal/services"
)

// Bids is the part of BidService the handler needs.
type Bids interface {
	Place(ctx context.Context, bidder *domain.User, in services.BidInput) (*domain.Bid, error)
	List(ctx context.Context, f domain.BidFilter) ([]domain.Bid, error)
}

type BidHandler struct {
	Auth *services.AuthService
	Bids Bids
}

type bidRequest struct {
	ProductID   int64    `json:"product_id" form:"product_id"`
	Amount      float64  `json:"amount" form:"amount"`
	BiddingTime string   `json:"bidding_time" form:"bidding_time"`
	HighestBid  *float64 `json:"highest_bid" form:"highest_bid"`
}

// GET /bids?product_id=
func (h *BidHandler) List(c *fiber.Ctx) error {
	if _, err := h.Auth.Authorize(c.UserContext(), identity(c), domain.RoleCustomer); err != nil {
		return err
	}
	var f domain.BidFilter
	if q := c.Query("product_id"); q != "" {
		id, err := strconv.ParseInt(q, 10, 64)
		if err != nil || id <= 0 {
			return domain.Invalid("product_id must be a positive integer")
		}
		f.ProductID = id
	}
	bids, err := h.Bids.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(bids)
}

// POST /bids
func (h *BidHandler) Place(c *fiber.Ctx) error {
	bidder, err := h.Auth.Authorize(c.UserContext(), identity(c), domain.RoleCustomer)
	if err != nil {
		return err
	}
	var req bidRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	b, err := h.Bids.Place(c.UserContext(), bidder, services.BidInput{
		ProductID:   req.ProductID,
		Amount:      req.Amount,
		BiddingTime: req.BiddingTime,
		HighestBid:  req.HighestBid,
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			applog.Info(c, "bids.place.rejected", map[string]any{"product_id": req.ProductID, "reason": err.Error()})
		}
		return err
	}
	applog.Audit(c, "bids.place", map[string]any{"bid_id": b.ID, "product_id": b.ProductID, "amount": b.Amount})
	return c.Status(fiber.StatusCreated).JSON(b)
}
