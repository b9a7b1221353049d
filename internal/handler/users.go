package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-booking/internal/model"
)

// UserDirectory is the resident registry as seen by the HTTP layer.
type UserDirectory interface {
	Register(ctx context.Context, id uint64, displayName string) (model.User, error)
	Get(ctx context.Context, id uint64) (model.User, error)
}

// UserHandler serves /v1/users and /v1/me.
type UserHandler struct {
	svc UserDirectory
}

func NewUserHandler(svc UserDirectory) *UserHandler {
	return &UserHandler{svc: svc}
}

type userResponse struct {
	ID         uint64 `json:"id"`
	Role       string `json:"role"`
	IsAdmin    bool   `json:"is_admin"`
	Registered bool   `json:"registered"`
}

// Register handles POST /v1/users: the caller records the current
// display name. Only its keyed hash is stored.
func (h *UserHandler) Register(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	u, err := h.svc.Register(c.Request().Context(), userID, req.DisplayName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{ID: u.ID, Role: currentRole(c), IsAdmin: u.IsAdmin, Registered: u.NameHash != ""})
}

// Me handles GET /v1/me. Residents who never registered get a bare record.
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	u, err := h.svc.Get(c.Request().Context(), userID)
	if err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{
		ID:         userID,
		Role:       currentRole(c),
		IsAdmin:    u.IsAdmin,
		Registered: u.NameHash != "",
	})
}
