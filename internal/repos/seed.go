package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"bidmarket/internal/domain"
	applog "bidmarket/internal/log"
)

// SeedDemo inserts the demo users, and products and bids when the catalog
// is empty. Safe to run on every startup.
func SeedDemo(ctx context.Context, db *sqlx.DB, cost int) error {
	users := NewUserRepo(db)
	products := NewProductRepo(db)
	bids := NewBidRepo(db)

	return NewStore(db).RunAtomic(ctx, func(ctx context.Context) error {
		mk := func(username, email, raw string, role domain.Role) (*domain.User, error) {
			if u, err := users.ByUsername(ctx, username); err == nil {
				return u, nil
			}
			h, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
			if err != nil {
				return nil, err
			}
			u := &domain.User{Username: username, Email: email, Hash: string(h), Role: role}
			return u, users.Create(ctx, u)
		}
		customer, err := mk("johndoe", "johndoe@example.com", "password123", domain.RoleCustomer)
		if err != nil {
			return err
		}
		admin, err := mk("scholar", "scholar@example.com", "scholarpass", domain.RoleAdmin)
		if err != nil {
			return err
		}

		existing, err := products.List(ctx, "")
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}
		applog.Logger().Info().Str("action", "seed").Msg("inserting demo products and bids")

		qty := func(n int64) *int64 { return &n }
		day := func(y int, m time.Month, d int) domain.Timestamp {
			return domain.NewTimestamp(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
		}
		demo := []*domain.Product{
			{Name: "Gear Box", Description: "Sparkling new", Price: 2000, Quantity: qty(12), BiddingDeadline: day(2024, 8, 1)},
			{Name: "Steering Wheel", Description: "Achieve comfy with the imported steering wheels", Price: 3500, Quantity: qty(100), BiddingDeadline: day(2024, 8, 10)},
			{Name: "Tyres", Description: "Lets go spanning with the new japan tyres", Price: 4500, Quantity: qty(70), BiddingDeadline: day(2024, 8, 5)},
		}
		for _, p := range demo {
			p.UserID = admin.ID
			p.Status = domain.ProductAvailable
			if err := products.Create(ctx, p); err != nil {
				return err
			}
		}

		seedBids := []*domain.Bid{
			{ProductID: demo[0].ID, Amount: 2300, Status: domain.BidAccepted, BiddingTime: day(2025, 8, 5), HighestBid: 3000},
			{ProductID: demo[1].ID, Amount: 3700, Status: domain.BidPending, BiddingTime: day(2025, 9, 5), HighestBid: 4500},
			{ProductID: demo[2].ID, Amount: 4900, Status: domain.BidRejected, BiddingTime: day(2025, 8, 5), HighestBid: 5000},
		}
		for _, b := range seedBids {
			b.UserID = customer.ID
			if err := bids.Create(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
}
