package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/hoshichaam/movie_bff_go/internal/services"
	response "github.com/hoshichaam/movie_bff_go/pkg/response"
	vld "github.com/hoshichaam/movie_bff_go/pkg/validator"
)

// mapper error: only translates already-classified errors into a status.
func mapError(c *fiber.Ctx, err error) error {
	var (
		bad  services.ErrBadRequest
		cred services.ErrCredential
		up   services.ErrUpstream
		reg  services.ErrRegistration
	)
	switch {
	case errors.As(err, &bad):
		return response.Error(c, fiber.StatusBadRequest, bad.Error())
	case errors.As(err, &cred):
		return response.Error(c, fiber.StatusUnauthorized, cred.Error())
	case errors.As(err, &reg):
		return response.Error(c, fiber.StatusInternalServerError, reg.Error())
	case errors.As(err, &up):
		return response.Error(c, up.StatusCode(), up.Msg)
	default:
		slog.Error("unclassified error", "path", c.Path(), "error", err)
		return response.Error(c, fiber.StatusInternalServerError, "internal server error")
	}
}

// parseQuery binds and validates query parameters. ok=false means the
// 400 response has already been written.
func parseQuery(c *fiber.Ctx, out any) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, response.Error(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if fields, err := vld.ValidateStruct(out); err != nil {
		return false, response.ValidationError(c, fields)
	}
	return true, nil
}

// parseBody is parseQuery for JSON bodies.
func parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, response.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if fields, err := vld.ValidateStruct(out); err != nil {
		return false, response.ValidationError(c, fields)
	}
	return true, nil
}
