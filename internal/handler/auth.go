package handler

import (
	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/deppfellow/safe-trail/internal/service"
	"github.com/labstack/echo/v4"
)

// UserResponse wraps the public view of an account.
type UserResponse struct {
	User *model.PublicUser `json:"user"`
}

type AuthHandler struct {
	Handler
	auth *service.AuthService
}

func NewAuthHandler(h Handler, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		Handler: h,
		auth:    auth,
	}
}

func (h *AuthHandler) Register(c echo.Context, req *model.CredentialsRequest) (*UserResponse, error) {
	user, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: user}, nil
}

func (h *AuthHandler) Login(c echo.Context, req *model.CredentialsRequest) (*UserResponse, error) {
	user, err := h.auth.Login(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: user}, nil
}
