package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bidmarket/internal/domain"
	applog "bidmarket/internal/log"
	"bidmarket/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type registerRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type loginResponse struct {
	Message     string      `json:"message"`
	AccessToken string      `json:"access_token"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	UserID      int64       `json:"user_id"`
	Role        domain.Role `json:"role"`
}

// POST /register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	u, err := h.Auth.Register(c.UserContext(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			applog.Security(c, "auth.register.fail", map[string]any{"username": req.Username, "reason": err.Error()})
		}
		return err
	}
	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID, "username": u.Username, "role": u.Role})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User registered successfully"})
}

// POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return domain.Invalid("username and password are required")
	}

	u, tok, err := h.Auth.Login(c.UserContext(), username, req.Password)
	if errors.Is(err, services.ErrBadCreds) {
		applog.Security(c, "auth.login.fail", map[string]any{"username": username})
		return domain.Unauthorized("Invalid username or password")
	}
	if err != nil {
		return err
	}

	c.Locals("user_id", u.ID)
	applog.Audit(c, "auth.login.success", map[string]any{"username": u.Username})
	return c.JSON(loginResponse{
		Message:     "Welcome " + u.Username,
		AccessToken: tok,
		Username:    u.Username,
		Email:       u.Email,
		UserID:      u.ID,
		Role:        u.Role,
	})
}

// GET /session
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	u, err := h.Auth.CurrentUser(c.UserContext(), identity(c))
	if err != nil {
		return err
	}
	return c.JSON(u)
}

// POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	id := identity(c)
	if err := h.Auth.Logout(c.UserContext(), id); err != nil {
		return err
	}
	applog.Audit(c, "auth.logout", map[string]any{"jti": id.TokenID})
	return c.JSON(fiber.Map{"message": "Successfully logged out"})
}
