package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"greenroom/pkg/evaluate"
)

func (s *Server) handleEvaluate(c echo.Context) error {
	var req providerReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	res, err := s.Generator.Evaluate(c.Request().Context(), c.Param("id"), req.Provider)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, res)
}

type quickEvaluateReq struct {
	Content string `json:"content"`
}

// handleQuickEvaluate runs the rule-only pass over arbitrary content.
// Nothing is persisted; writers use it as a pre-flight check.
func (s *Server) handleQuickEvaluate(c echo.Context) error {
	var req quickEvaluateReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	e := evaluate.New(nil, "")
	return c.JSON(http.StatusOK, e.Quick(req.Content))
}
