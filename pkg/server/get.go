package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service":   "Greenroom Writers API",
		"status":    "ok",
		"providers": s.providerNames(),
	})
}

func (s *Server) providerNames() []string {
	if s.Registry == nil {
		return nil
	}
	return s.Registry.Names()
}
