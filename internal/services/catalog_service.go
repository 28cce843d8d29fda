package services

import (
	"context"
	"strings"

	"bidmarket/internal/domain"
	"bidmarket/internal/repos"
	"bidmarket/internal/validate"
)

type CatalogService struct {
	Prods *repos.ProductRepo
	Store *repos.Store
}

func NewCatalogService(prods *repos.ProductRepo, store *repos.Store) *CatalogService {
	return &CatalogService{Prods: prods, Store: store}
}

// ProductInput carries create/update fields; nil means not supplied.
type ProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Quantity    *int64
	Deadline    *string
	Status      *string
}

// ListProducts returns every product, or those with status when non-empty.
func (s *CatalogService) ListProducts(ctx context.Context, status string) ([]domain.Product, error) {
	if status == "" {
		return s.Prods.List(ctx, "")
	}
	st, ok := validate.ProductStatus(status)
	if !ok {
		return nil, domain.Invalid("status must be available or sold")
	}
	return s.Prods.List(ctx, st)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.Prods.ByID(ctx, id)
}

// CreateProduct lists a new product owned by owner. Name, description and
// price are required.
func (s *CatalogService) CreateProduct(ctx context.Context, owner *domain.User, in ProductInput) (*domain.Product, error) {
	if in.Name == nil || in.Description == nil || in.Price == nil {
		return nil, domain.Invalid("name, description and price are required")
	}
	p := &domain.Product{
		UserID:          owner.ID,
		Status:          domain.ProductAvailable,
		BiddingDeadline: domain.Now(),
	}
	if err := apply(p, in); err != nil {
		return nil, err
	}
	err := s.Store.RunAtomic(ctx, func(ctx context.Context) error {
		return s.Prods.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct applies the supplied fields to a product owned by caller.
func (s *CatalogService) UpdateProduct(ctx context.Context, caller *domain.User, id int64, in ProductInput) (*domain.Product, error) {
	var out *domain.Product
	err := s.Store.RunAtomic(ctx, func(ctx context.Context) error {
		p, err := s.owned(ctx, caller, id)
		if err != nil {
			return err
		}
		if err := apply(p, in); err != nil {
			return err
		}
		if err := s.Prods.Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func (s *CatalogService) DeleteProduct(ctx context.Context, caller *domain.User, id int64) error {
	return s.Store.RunAtomic(ctx, func(ctx context.Context) error {
		if _, err := s.owned(ctx, caller, id); err != nil {
			return err
		}
		return s.Prods.Delete(ctx, id)
	})
}

func (s *CatalogService) owned(ctx context.Context, caller *domain.User, id int64) (*domain.Product, error) {
	p, err := s.Prods.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != caller.ID {
		return nil, domain.Forbidden("You can only modify your own products")
	}
	return p, nil
}

func apply(p *domain.Product, in ProductInput) error {
	if in.Name != nil {
		name, ok := validate.ProductName(*in.Name)
		if !ok {
			return domain.Invalid("name must be 1-30 characters")
		}
		p.Name = name
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			return domain.Invalid("description is required")
		}
		p.Description = d
	}
	if in.Price != nil {
		if !validate.Price(*in.Price) {
			return domain.Invalid("price must be a positive number")
		}
		p.Price = *in.Price
	}
	if in.Quantity != nil {
		if !validate.Quantity(*in.Quantity) {
			return domain.Invalid("quantity must not be negative")
		}
		q := *in.Quantity
		p.Quantity = &q
	}
	if in.Deadline != nil {
		t, ok := validate.Timestamp(*in.Deadline)
		if !ok {
			return domain.Invalid("bidding_deadline must be an ISO-8601 timestamp")
		}
		p.BiddingDeadline = domain.NewTimestamp(t)
	}
	if in.Status != nil {
		st, ok := validate.ProductStatus(*in.Status)
		if !ok {
			return domain.Invalid("status must be available or sold")
		}
		p.Status = st
	}
	return nil
}
