package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bidmarket/internal/domain"
	applog "bidmarket/internal/log"
	"bidmarket/internal/services"
)

type UserHandler struct {
	Auth  *services.AuthService
	Users *services.UserService
}

type userPatchRequest struct {
	Username *string `json:"username" form:"username"`
	Email    *string `json:"email" form:"email"`
	Password *string `json:"password" form:"password"`
	Role     *string `json:"role" form:"role"`
}

// GET /users
func (h *UserHandler) List(c *fiber.Ctx) error {
	if _, err := h.Auth.Authorize(c.UserContext(), identity(c), domain.RoleAdmin); err != nil {
		return err
	}
	users, err := h.Users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// GET /users/:id
func (h *UserHandler) Get(c *fiber.Ctx) error {
	caller, err := h.Auth.Authorize(c.UserContext(), identity(c), domain.Roles...)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	u, err := h.Users.Get(c.UserContext(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

// PATCH /users/:id
func (h *UserHandler) Patch(c *fiber.Ctx) error {
	caller, err := h.Auth.Authorize(c.UserContext(), identity(c), domain.Roles...)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req userPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	u, err := h.Users.Patch(c.UserContext(), caller, id, services.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	applog.Audit(c, "users.patch", map[string]any{"target_id": id, "role_change": req.Role != nil})
	return c.JSON(u)
}

// DELETE /users/:id
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if _, err := h.Auth.Authorize(c.UserContext(), identity(c), domain.RoleAdmin); err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Users.Delete(c.UserContext(), id); err != nil {
		return err
	}
	applog.Audit(c, "users.delete", map[string]any{"target_id": id})
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
