package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"greenroom/pkg/generate"
)

func (s *Server) handleGenerate(c echo.Context) error {
	var req generate.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	res, err := s.Generator.Generate(c.Request().Context(), req)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, res)
}

type providerReq struct {
	Provider string `json:"provider,omitempty"`
}

func (s *Server) handleRegenerate(c echo.Context) error {
	var req providerReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	res, err := s.Generator.Regenerate(c.Request().Context(), c.Param("id"), req.Provider)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, res)
}

type variationsReq struct {
	Count    int    `json:"count,omitempty"`
	Provider string `json:"provider,omitempty"`
}

func (s *Server) handleVariations(c echo.Context) error {
	var req variationsReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	vars, err := s.Generator.Variations(c.Request().Context(), c.Param("id"), req.Count, req.Provider)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"variations": vars})
}
