package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"cardregistry/internal/auth"
	apperr "cardregistry/internal/errors"
	"cardregistry/internal/service"
)

// ClaimsContextKey is where the auth middleware stores *auth.Claims.
const ClaimsContextKey = "user"

// UserHandler serves the caller's own profile.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Me godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=model.User}
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return failure(c, err)
	}

	user, err := h.svc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return failure(c, err)
	}
	return success(c, http.StatusOK, user, "profile loaded")
}

func currentUserID(c echo.Context) (uuid.UUID, error) {
	claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
	if !ok {
		return uuid.Nil, apperr.ErrInvalidToken
	}
	id, err := claims.UserID()
	if err != nil {
		return uuid.Nil, apperr.ErrInvalidToken
	}
	return id, nil
}
