package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"greenroom/pkg/schema"
)

func (s *Server) handleCreateCallback(c echo.Context) error {
	var cb schema.Callback
	if err := c.Bind(&cb); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if cb.ProjectID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "project_id is required")
	}
	if strings.TrimSpace(cb.Content) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}
	if err := normalizeCallback(&cb); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Store.CreateCallback(c.Request().Context(), &cb); err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusCreated, cb)
}

func (s *Server) handleListCallbacks(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := s.Store.Project(ctx, c.Param("id")); err != nil {
		return httpErr(err)
	}
	var resolved *bool
	switch c.QueryParam("resolved") {
	case "true":
		v := true
		resolved = &v
	case "false":
		v := false
		resolved = &v
	}
	callbacks, err := s.Store.CallbacksByProject(ctx, c.Param("id"), resolved)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, callbacks)
}

type resolveCallbackReq struct {
	PayoffSceneID string `json:"payoff_scene_id"`
	PayoffEpisode int    `json:"payoff_episode_number"`
}

func (s *Server) handleResolveCallback(c echo.Context) error {
	var req resolveCallbackReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	cb, err := s.Store.ResolveCallback(c.Request().Context(), c.Param("id"), req.PayoffSceneID, req.PayoffEpisode)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, cb)
}

func (s *Server) handleDeleteCallback(c echo.Context) error {
	if err := s.Store.DeleteCallback(c.Request().Context(), c.Param("id")); err != nil {
		return httpErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}
