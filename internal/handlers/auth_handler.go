// internal/handlers/auth_handler.go
package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/hoshichaam/movie_bff_go/internal/models"
	"github.com/hoshichaam/movie_bff_go/pkg/authutil"
	response "github.com/hoshichaam/movie_bff_go/pkg/response"
)

// Identity is what the user routes need from the identity client.
type Identity interface {
	Register(ctx context.Context, in models.RegisterRequest) (models.AccountRecord, error)
	Login(ctx context.Context, in models.LoginRequest) (models.AuthToken, error)
	Refresh(ctx context.Context, refreshToken string) (models.AuthToken, error)
}

type AuthHandler struct {
	identity Identity
}

func NewAuthHandler(id Identity) *AuthHandler {
	return &AuthHandler{identity: id}
}

// POST /user/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if ok, err := parseBody(c, &req); !ok {
		slog.Debug("AUTH Register: rejected input", "email", authutil.MaskEmail(req.Email))
		return err
	}

	rec, err := h.identity.Register(c.UserContext(), req)
	if err != nil {
		return mapError(c, err)
	}
	slog.Info("AUTH Register: success", "uid", rec.UID, "email", authutil.MaskEmail(rec.Email))
	return response.OK(c, rec)
}

// POST /user/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if ok, err := parseBody(c, &req); !ok {
		slog.Debug("AUTH Login: rejected input", "email", authutil.MaskEmail(req.Email))
		return err
	}

	tok, err := h.identity.Login(c.UserContext(), req)
	if err != nil {
		slog.Info("AUTH Login: failed", "email", authutil.MaskEmail(req.Email), "error", err)
		return mapError(c, err)
	}
	return response.OK(c, tok)
}

// POST /user/refresh-auth?refreshToken=...
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req models.RefreshRequest
	if ok, err := parseQuery(c, &req); !ok {
		return err
	}

	tok, err := h.identity.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return mapError(c, err)
	}
	return response.OK(c, tok)
}
