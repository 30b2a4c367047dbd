package middleware

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/hoshichaam/movie_bff_go/pkg/authutil"
	response "github.com/hoshichaam/movie_bff_go/pkg/response"
)

// Verifier reports whether a bearer token is currently valid.
type Verifier interface {
	Verify(ctx context.Context, token string) bool
}

// Allowed is the access predicate for protected routes. It never fails:
// a missing or malformed header, a rejected token and any internal fault
// all come back as false.
func Allowed(c *fiber.Ctx, v Verifier) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("access gate panic", "path", c.Path(), "panic", r)
			ok = false
		}
	}()

	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		slog.Debug("access denied: no authorization header", "path", c.Path())
		return false
	}
	token, found := authutil.BearerToken(header)
	if !found {
		slog.Debug("access denied: expected \"Bearer <token>\"", "path", c.Path())
		return false
	}
	if v == nil {
		return false
	}
	return v.Verify(c.UserContext(), token)
}

// Gate rejects the request with a uniform 401 unless Allowed passes.
// The caller never learns why.
func Gate(v Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !Allowed(c, v) {
			return response.Error(c, fiber.StatusUnauthorized, "unauthenticated")
		}
		return c.Next()
	}
}
