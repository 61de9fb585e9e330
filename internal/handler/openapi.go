package handler

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/deppfellow/safe-trail/static"
	"github.com/labstack/echo/v4"
)

type OpenAPIHandler struct {
	Handler
}

func NewOpenAPIHandler(h Handler) *OpenAPIHandler {
	return &OpenAPIHandler{Handler: h}
}

// ServeOpenAPIUI renders the API explorer page, which loads
// /static/openapi.json.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")

	page, err := fs.ReadFile(static.Files, "openapi.html")
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTMLBlob(http.StatusOK, page); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}
