package handler

import (
	"github.com/deppfellow/safe-trail/internal/server"
	"github.com/deppfellow/safe-trail/internal/service"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health    *HealthHandler
	OpenAPI   *OpenAPIHandler
	Tourist   *TouristHandler
	DigitalID *DigitalIDHandler
	Auth      *AuthHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	h := NewHandler(s)

	return &Handlers{
		Health:    NewHealthHandler(h),
		OpenAPI:   NewOpenAPIHandler(h),
		Tourist:   NewTouristHandler(h, services.Tourist),
		DigitalID: NewDigitalIDHandler(h, services.DigitalID),
		Auth:      NewAuthHandler(h, services.Auth),
	}
}
