package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bidmarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

const productCols = `id,name,description,price,quantity,status,user_id,bidding_deadline`

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) ByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := get(ctx, r.db, &p, `SELECT `+productCols+` FROM products WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Product not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all products, or only those with the given status.
func (r *ProductRepo) List(ctx context.Context, status domain.ProductStatus) ([]domain.Product, error) {
	out := []domain.Product{}
	if status == "" {
		err := sel(ctx, r.db, &out, `SELECT `+productCols+` FROM products ORDER BY id`)
		return out, err
	}
	err := sel(ctx, r.db, &out, `SELECT `+productCols+` FROM products WHERE status=? ORDER BY id`, string(status))
	return out, err
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.Status == "" {
		p.Status = domain.ProductAvailable
	}
	err := get(ctx, r.db, &p.ID, `
		INSERT INTO products(name,description,price,quantity,status,user_id,bidding_deadline)
		VALUES(?,?,?,?,?,?,?)
		RETURNING id`,
		p.Name, p.Description, p.Price, nullInt(p.Quantity), string(p.Status), p.UserID, p.BiddingDeadline)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	res, err := exec(ctx, r.db, `
		UPDATE products
		SET name=?, description=?, price=?, quantity=?, status=?, bidding_deadline=?
		WHERE id=?`,
		p.Name, p.Description, p.Price, nullInt(p.Quantity), string(p.Status), p.BiddingDeadline, p.ID)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	if !affectedOne(res) {
		return domain.NotFound("Product not found")
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	res, err := exec(ctx, r.db, `DELETE FROM products WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if !affectedOne(res) {
		return domain.NotFound("Product not found")
	}
	return nil
}

func nullInt(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}
