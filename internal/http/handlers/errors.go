package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"bidmarket/internal/domain"
	applog "bidmarket/internal/log"
)

const (
	msgNotFound = "The requested resource does not exist"
	msgInternal = "Something went wrong. Please try again."
)

type errorBody struct {
	Error         string        `json:"error"`
	Message       string        `json:"message"`
	RequiredRoles []domain.Role `json:"required_roles,omitempty"`
}

func statusOf(k domain.Kind) int {
	switch k {
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindForbidden:
		return fiber.StatusForbidden
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindUnauthorized:
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}

func kindOf(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return string(domain.KindValidation)
	case fiber.StatusUnauthorized:
		return string(domain.KindUnauthorized)
	case fiber.StatusForbidden:
		return string(domain.KindForbidden)
	case fiber.StatusNotFound:
		return string(domain.KindNotFound)
	}
	return strings.ReplaceAll(utils.StatusMessage(code), " ", "")
}

// ErrorHandler turns every error into the JSON envelope. Domain errors keep
// their message; anything unexpected is logged and answered with a 500 that
// carries no detail.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		status := statusOf(de.Kind)
		c.Status(status)
		switch status {
		case fiber.StatusUnauthorized:
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			applog.Security(c, "access.denied", map[string]any{"reason": de.Message})
		case fiber.StatusForbidden:
			applog.Security(c, "access.denied", map[string]any{"reason": de.Message, "required_roles": de.Roles})
		}
		return c.JSON(errorBody{Error: string(de.Kind), Message: de.Message, RequiredRoles: de.Roles})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		msg := fe.Message
		if fe.Code == fiber.StatusNotFound {
			msg = msgNotFound
		}
		return c.Status(fe.Code).JSON(errorBody{Error: kindOf(fe.Code), Message: msg})
	}

	c.Status(fiber.StatusInternalServerError)
	applog.Error(c, "server.error", err, nil)
	return c.JSON(errorBody{Error: "InternalError", Message: msgInternal})
}

// NotFound answers requests no route matched.
func NotFound(c *fiber.Ctx) error {
	return domain.NotFound(msgNotFound)
}

func badBody() error {
	return domain.Invalid("malformed request body")
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, domain.Invalid("id must be a positive integer")
	}
	return int64(id), nil
}
