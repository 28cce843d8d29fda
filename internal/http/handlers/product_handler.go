package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bidmarket/internal/domain"
	applog "bidmarket/internal/log"
	"bidmarket/internal/services"
)

type ProductHandler struct {
	Auth    *services.AuthService
	Catalog *services.CatalogService
}

type productRequest struct {
	Name            *string  `json:"name" form:"name"`
	Description     *string  `json:"description" form:"description"`
	Price           *float64 `json:"price" form:"price"`
	Quantity        *int64   `json:"quantity" form:"quantity"`
	BiddingDeadline *string  `json:"bidding_deadline" form:"bidding_deadline"`
	Deadline        *string  `json:"deadline" form:"deadline"`
	Status          *string  `json:"status" form:"status"`
}

func (r productRequest) input() services.ProductInput {
	deadline := r.BiddingDeadline
	if deadline == nil {
		deadline = r.Deadline
	}
	return services.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Deadline:    deadline,
		Status:      r.Status,
	}
}

// GET /products?status=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	if _, err := h.Auth.Authorize(c.UserContext(), identity(c), domain.Roles...); err != nil {
		return err
	}
	products, err := h.Catalog.ListProducts(c.UserContext(), c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// GET /products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	if _, err := h.Auth.Authorize(c.UserContext(), identity(c), domain.Roles...); err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// POST /products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	admin, err := h.Auth.Authorize(c.UserContext(), identity(c), domain.RoleAdmin)
	if err != nil {
		return err
	}
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), admin, req.input())
	if err != nil {
		return err
	}
	applog.Audit(c, "products.create", map[string]any{"product_id": p.ID, "name": p.Name})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	admin, err := h.Auth.Authorize(c.UserContext(), identity(c), domain.RoleAdmin)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), admin, id, req.input())
	if err != nil {
		return err
	}
	applog.Audit(c, "products.update", map[string]any{"product_id": p.ID, "status": p.Status})
	return c.JSON(p)
}

// DELETE /products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	admin, err := h.Auth.Authorize(c.UserContext(), identity(c), domain.RoleAdmin)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), admin, id); err != nil {
		return err
	}
	applog.Audit(c, "products.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}
