package handler

import (
	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/deppfellow/safe-trail/internal/service"
	"github.com/labstack/echo/v4"
)

// LoginResponse wraps the profile returned by the identify endpoint.
type LoginResponse struct {
	Profile *model.TouristProfile `json:"profile"`
}

type TouristHandler struct {
	Handler
	tourists *service.TouristService
}

func NewTouristHandler(h Handler, tourists *service.TouristService) *TouristHandler {
	return &TouristHandler{
		Handler:  h,
		tourists: tourists,
	}
}

// Login identifies a tourist, creating the profile on first contact.
func (h *TouristHandler) Login(c echo.Context, req *model.LoginRequest) (*LoginResponse, error) {
	profile, err := h.tourists.Login(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Profile: profile}, nil
}

func (h *TouristHandler) GetProfile(c echo.Context, req *model.TouristIDParam) (*model.TouristProfile, error) {
	return h.tourists.GetProfile(c.Request().Context(), req.TouristID)
}

func (h *TouristHandler) CreateProfile(c echo.Context, req *model.CreateProfileRequest) (*model.TouristProfile, error) {
	return h.tourists.CreateProfile(c.Request().Context(), req)
}

// UpdateProfile completes a profile and issues its digital ID.
func (h *TouristHandler) UpdateProfile(c echo.Context, req *model.UpdateProfileRequest) (*model.TouristProfile, error) {
	return h.tourists.UpdateProfile(c.Request().Context(), req)
}
