package handler

import (
	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/deppfellow/safe-trail/internal/service"
	"github.com/labstack/echo/v4"
)

type DigitalIDHandler struct {
	Handler
	digitalIDs *service.DigitalIDService
}

func NewDigitalIDHandler(h Handler, digitalIDs *service.DigitalIDService) *DigitalIDHandler {
	return &DigitalIDHandler{
		Handler:    h,
		digitalIDs: digitalIDs,
	}
}

// GetDigitalID returns the tourist's digital ID. A completed profile
// without one gets it issued on this read.
func (h *DigitalIDHandler) GetDigitalID(c echo.Context, req *model.TouristIDParam) (*model.DigitalIDView, error) {
	return h.digitalIDs.GetDigitalID(c.Request().Context(), req.TouristID)
}

func (h *DigitalIDHandler) CreateDigitalID(c echo.Context, req *model.CreateDigitalIDRequest) (*model.DigitalID, error) {
	return h.digitalIDs.CreateDigitalID(c.Request().Context(), req)
}
