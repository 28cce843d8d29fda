package domain

type ProductStatus string

const (
	ProductAvailable ProductStatus = "available"
	ProductSold      ProductStatus = "sold"
)

func (s ProductStatus) Valid() bool {
	return s == ProductAvailable || s == ProductSold
}

type Product struct {
	ID              int64         `db:"id" json:"id"`
	Name            string        `db:"name" json:"name"`
	Description     string        `db:"description" json:"description"`
	Price           float64       `db:"price" json:"price"`
	Quantity        *int64        `db:"quantity" json:"quantity"`
	Status          ProductStatus `db:"status" json:"status"`
	UserID          int64         `db:"user_id" json:"user_id"`
	BiddingDeadline Timestamp     `db:"bidding_deadline" json:"bidding_deadline"`
}

type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

func (s BidStatus) Valid() bool {
	switch s {
	case BidPending, BidAccepted, BidRejected:
		return true
	}
	return false
}

// Bid rows are read joined with their bidder and product so the names
// can be echoed back; Username and ProductName are not persisted.
type Bid struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Username    string    `db:"username" json:"user"`
	ProductID   int64     `db:"product_id" json:"product_id"`
	ProductName string    `db:"product_name" json:"product_name"`
	Amount      float64   `db:"amount" json:"amount"`
	Status      BidStatus `db:"status" json:"status"`
	BiddingTime Timestamp `db:"bidding_time" json:"bidding_time"`
	HighestBid  float64   `db:"highest_bid" json:"highest_bid"`
}

// BidFilter narrows a bid listing; zero values match everything.
type BidFilter struct {
	ProductID int64
	UserID    int64
}
