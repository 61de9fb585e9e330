// Package router wires handlers and middleware into the Echo instance.
package router

import (
	"net/http"

	"github.com/deppfellow/safe-trail/internal/handler"
	"github.com/deppfellow/safe-trail/internal/middleware"
	"github.com/deppfellow/safe-trail/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance serving every route.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
		middlewares.Global.BodyLimit(),
	)

	registerSystemRoutes(router, h)

	api := router.Group("/api")
	registerTouristRoutes(api, h, middlewares)
	registerDigitalIDRoutes(api, h)
	registerAuthRoutes(api, h, middlewares)

	return router
}

func registerTouristRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	api.POST("/login", handler.Handle(h.Tourist.Handler, h.Tourist.Login, http.StatusOK), m.RateLimit.Limit())

	profile := api.Group("/profile")
	profile.POST("", handler.Handle(h.Tourist.Handler, h.Tourist.CreateProfile, http.StatusCreated))
	profile.GET("/:touristId", handler.Handle(h.Tourist.Handler, h.Tourist.GetProfile, http.StatusOK))

	update := handler.Handle(h.Tourist.Handler, h.Tourist.UpdateProfile, http.StatusOK)
	profile.POST("/:touristId", update)
	profile.PUT("/:touristId", update)
}

func registerDigitalIDRoutes(api *echo.Group, h *handler.Handlers) {
	digitalID := api.Group("/digital-id")
	digitalID.POST("", handler.Handle(h.DigitalID.Handler, h.DigitalID.CreateDigitalID, http.StatusCreated))
	digitalID.GET("/:touristId", handler.Handle(h.DigitalID.Handler, h.DigitalID.GetDigitalID, http.StatusOK))
}

func registerAuthRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	api.POST("/register", handler.Handle(h.Auth.Handler, h.Auth.Register, http.StatusCreated), m.RateLimit.Limit())
	api.POST("/auth/login", handler.Handle(h.Auth.Handler, h.Auth.Login, http.StatusOK), m.RateLimit.Limit())
}
