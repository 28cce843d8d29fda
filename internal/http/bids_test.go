package handlers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBidOnSoldProductRejected(t *testing.T) {
	app, _ := newApp(t)
	admin := signup(t, app, "admin", "admin")
	buyer := signup(t, app, "buyer", "customer")
	id := createProduct(t, app, admin, "Tyres")

	status, raw := call(t, app, http.MethodPut, path("/products", id), admin.Token, map[string]any{"status": "sold"})
	require.Equal(t, http.StatusOK, status, string(raw))
	require.Equal(t, "sold", obj(t, raw)["status"])

	status, raw = call(t, app, http.MethodPost, "/bids", buyer.Token, map[string]any{"product_id": id, "amount": 150})
	require.Equal(t, http.StatusBadRequest, status)
	m := obj(t, raw)
	require.Equal(t, "ValidationError", m["error"])
	require.Equal(t, "Product not available for bidding.", m["message"])

	status, _ = call(t, app, http.MethodPost, "/bids", buyer.Token, map[string]any{"product_id": 9999, "amount": 150})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestPlaceAndListBids(t *testing.T) {
	app, _ := newApp(t)
	admin := signup(t, app, "admin", "admin")
	buyer := signup(t, app, "buyer", "customer")
	gear := createProduct(t, app, admin, "Gear Box")
	wheel := createProduct(t, app, admin, "Wheel")

	status, raw := call(t, app, http.MethodPost, "/bids", buyer.Token, map[string]any{
		"product_id": gear, "amount": 120, "highest_bid": 300, "bidding_time": "2025-09-05T10:00:00",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	bid := obj(t, raw)
	require.Equal(t, "pending", bid["status"])
	require.Equal(t, 120.0, bid["amount"])
	require.Equal(t, 300.0, bid["highest_bid"])
	require.Equal(t, "2025-09-05T10:00:00Z", bid["bidding_time"])
	require.Equal(t, "buyer", bid["user"])
	require.Equal(t, "Gear Box", bid["product_name"])

	status, _ = call(t, app, http.MethodPost, "/bids", buyer.Token, map[string]any{"product_id": wheel, "amount": 50})
	require.Equal(t, http.StatusCreated, status)

	status, raw = call(t, app, http.MethodGet, "/bids", buyer.Token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list(t, raw), 2)

	status, raw = call(t, app, http.MethodGet, "/bids?product_id="+strconv.FormatInt(wheel, 10), buyer.Token, nil)
	require.Equal(t, http.StatusOK, status)
	only := list(t, raw)
	require.Len(t, only, 1)
	require.Equal(t, 50.0, only[0]["highest_bid"])
	require.Equal(t, "Wheel", only[0]["product_name"])

	status, _ = call(t, app, http.MethodGet, "/bids?product_id=abc", buyer.Token, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestBidsAreCustomerOnly(t *testing.T) {
	app, _ := newApp(t)
	admin := signup(t, app, "admin", "admin")
	id := createProduct(t, app, admin, "Lamp")

	status, raw := call(t, app, http.MethodPost, "/bids", admin.Token, map[string]any{"product_id": id, "amount": 10})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, []any{"customer"}, obj(t, raw)["required_roles"])

	status, _ = call(t, app, http.MethodGet, "/bids", admin.Token, nil)
	require.Equal(t, http.StatusForbidden, status)
}

func TestBidInputValidation(t *testing.T) {
	app, _ := newApp(t)
	admin := signup(t, app, "admin", "admin")
	buyer := signup(t, app, "buyer", "customer")
	id := createProduct(t, app, admin, "Lamp")

	bad := []map[string]any{
		{"amount": 10},
		{"product_id": id},
		{"product_id": id, "amount": -5},
		{"product_id": id, "amount": 10, "highest_bid": 0},
		{"product_id": id, "amount": 10, "bidding_time": "last tuesday"},
		{"product_id": "one", "amount": 10},
	}
	for _, body := range bad {
		status, raw := call(t, app, http.MethodPost, "/bids", buyer.Token, body)
		require.Equal(t, http.StatusBadRequest, status, "%v -> %s", body, raw)
	}
}
