package repos_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bidmarket/internal/domain"
	"bidmarket/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mkUser(t *testing.T, users *repos.UserRepo, name string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, Email: name + "@example.com", Hash: "x", Role: role}
	require.NoError(t, users.Create(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func TestUserRepo_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	users := repos.NewUserRepo(memdb(t))

	u := mkUser(t, users, "alice", domain.RoleCustomer)

	got, err := users.ByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, domain.RoleCustomer, got.Role)
	require.False(t, got.CreatedAt.IsZero())

	_, err = users.ByID(ctx, 9999)
	require.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestUserRepo_DuplicateIsValidationError(t *testing.T) {
	ctx := context.Background()
	users := repos.NewUserRepo(memdb(t))
	mkUser(t, users, "alice", domain.RoleCustomer)

	dup := &domain.User{Username: "alice", Email: "other@example.com", Hash: "x", Role: domain.RoleCustomer}
	err := users.Create(ctx, dup)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))

	dupEmail := &domain.User{Username: "bob", Email: "alice@example.com", Hash: "x", Role: domain.RoleCustomer}
	err = users.Create(ctx, dupEmail)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestUserRepo_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	users := repos.NewUserRepo(db)
	products := repos.NewProductRepo(db)
	bids := repos.NewBidRepo(db)

	admin := mkUser(t, users, "admin", domain.RoleAdmin)
	buyer := mkUser(t, users, "buyer", domain.RoleCustomer)
	p := &domain.Product{Name: "Lamp", Description: "Brass", Price: 10, UserID: admin.ID, BiddingDeadline: domain.Now()}
	require.NoError(t, products.Create(ctx, p))
	b := &domain.Bid{UserID: buyer.ID, ProductID: p.ID, Amount: 12, BiddingTime: domain.Now(), HighestBid: 12}
	require.NoError(t, bids.Create(ctx, b))

	require.NoError(t, users.Delete(ctx, admin.ID))

	_, err := products.ByID(ctx, p.ID)
	require.Equal(t, domain.KindNotFound, domain.KindOf(err))
	left, err := bids.List(ctx, domain.BidFilter{})
	require.NoError(t, err)
	require.Empty(t, left)

	err = users.Delete(ctx, admin.ID)
	require.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestProductRepo_CRUDAndStatusFilter(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	users := repos.NewUserRepo(db)
	products := repos.NewProductRepo(db)
	admin := mkUser(t, users, "admin", domain.RoleAdmin)

	qty := int64(3)
	deadline := domain.NewTimestamp(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC))
	p := &domain.Product{Name: "Gear Box", Description: "New", Price: 2000, Quantity: &qty, UserID: admin.ID, BiddingDeadline: deadline}
	require.NoError(t, products.Create(ctx, p))
	require.Equal(t, domain.ProductAvailable, p.Status)

	sold := &domain.Product{Name: "Tyres", Description: "Used", Price: 50, Status: domain.ProductSold, UserID: admin.ID, BiddingDeadline: deadline}
	require.NoError(t, products.Create(ctx, sold))

	got, err := products.ByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Gear Box", got.Name)
	require.NotNil(t, got.Quantity)
	require.EqualValues(t, 3, *got.Quantity)
	require.True(t, deadline.Equal(got.BiddingDeadline.Time))

	all, err := products.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	avail, err := products.List(ctx, domain.ProductAvailable)
	require.NoError(t, err)
	require.Len(t, avail, 1)
	require.Equal(t, p.ID, avail[0].ID)

	got.Status = domain.ProductSold
	got.Quantity = nil
	require.NoError(t, products.Update(ctx, got))
	again, err := products.ByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProductSold, again.Status)
	require.Nil(t, again.Quantity)

	require.NoError(t, products.Delete(ctx, p.ID))
	err = products.Delete(ctx, p.ID)
	require.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestBidRepo_ListJoinsNames(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	users := repos.NewUserRepo(db)
	products := repos.NewProductRepo(db)
	bids := repos.NewBidRepo(db)

	admin := mkUser(t, users, "admin", domain.RoleAdmin)
	buyer := mkUser(t, users, "buyer", domain.RoleCustomer)
	p1 := &domain.Product{Name: "Lamp", Description: "Brass", Price: 10, UserID: admin.ID, BiddingDeadline: domain.Now()}
	p2 := &domain.Product{Name: "Desk", Description: "Oak", Price: 90, UserID: admin.ID, BiddingDeadline: domain.Now()}
	require.NoError(t, products.Create(ctx, p1))
	require.NoError(t, products.Create(ctx, p2))

	for _, b := range []*domain.Bid{
		{UserID: buyer.ID, ProductID: p1.ID, Amount: 11, BiddingTime: domain.Now(), HighestBid: 11},
		{UserID: buyer.ID, ProductID: p2.ID, Amount: 95, BiddingTime: domain.Now(), HighestBid: 120},
	} {
		require.NoError(t, bids.Create(ctx, b))
		require.Equal(t, domain.BidPending, b.Status)
	}

	all, err := bids.List(ctx, domain.BidFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "buyer", all[0].Username)
	require.Equal(t, "Lamp", all[0].ProductName)

	onlyDesk, err := bids.List(ctx, domain.BidFilter{ProductID: p2.ID})
	require.NoError(t, err)
	require.Len(t, onlyDesk, 1)
	require.Equal(t, 120.0, onlyDesk[0].HighestBid)

	one, err := bids.ByID(ctx, onlyDesk[0].ID)
	require.NoError(t, err)
	require.Equal(t, "Desk", one.ProductName)
}

func TestStore_RunAtomicRollsBack(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	users := repos.NewUserRepo(db)
	store := repos.NewStore(db)

	boom := errors.New("boom")
	err := store.RunAtomic(ctx, func(ctx context.Context) error {
		u := &domain.User{Username: "ghost", Email: "ghost@example.com", Hash: "x", Role: domain.RoleCustomer}
		if err := users.Create(ctx, u); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = users.ByUsername(ctx, "ghost")
	require.Equal(t, domain.KindNotFound, domain.KindOf(err))

	err = store.RunAtomic(ctx, func(ctx context.Context) error {
		u := &domain.User{Username: "kept", Email: "kept@example.com", Hash: "x", Role: domain.RoleCustomer}
		return users.Create(ctx, u)
	})
	require.NoError(t, err)
	_, err = users.ByUsername(ctx, "kept")
	require.NoError(t, err)
}

func TestTokenRepo_RevokeAndPurge(t *testing.T) {
	ctx := context.Background()
	tokens := repos.NewTokenRepo(memdb(t))

	require.NoError(t, tokens.Revoke(ctx, "old", time.Now().Add(-time.Hour)))
	require.NoError(t, tokens.Revoke(ctx, "live", time.Now().Add(time.Hour)))
	require.NoError(t, tokens.Revoke(ctx, "live", time.Now().Add(time.Hour)))

	ok, err := tokens.IsRevoked(ctx, "live")
	require.NoError(t, err)
	require.True(t, ok)

	// the second Revoke purged the already-expired entry
	ok, err = tokens.IsRevoked(ctx, "old")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = tokens.IsRevoked(ctx, "never")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	require.NoError(t, repos.SeedDemo(ctx, db, bcrypt.MinCost))
	require.NoError(t, repos.SeedDemo(ctx, db, bcrypt.MinCost))

	users, err := repos.NewUserRepo(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	admin, err := repos.NewUserRepo(db).ByUsername(ctx, "scholar")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, admin.Role)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Hash), []byte("scholarpass")))

	products, err := repos.NewProductRepo(db).List(ctx, "")
	require.NoError(t, err)
	require.Len(t, products, 3)

	bids, err := repos.NewBidRepo(db).List(ctx, domain.BidFilter{})
	require.NoError(t, err)
	require.Len(t, bids, 3)
	require.Equal(t, "johndoe", bids[0].Username)
}
