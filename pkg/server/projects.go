package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"greenroom/pkg/schema"
)

func (s *Server) handleCreateProject(c echo.Context) error {
	var p schema.Project
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if strings.TrimSpace(p.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if err := normalizeProject(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Store.CreateProject(c.Request().Context(), &p); err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleListProjects(c echo.Context) error {
	projects, err := s.Store.Projects(c.Request().Context())
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) handleGetProject(c echo.Context) error {
	p, err := s.Store.Project(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := s.Store.Project(ctx, c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	p.ID = c.Param("id")
	if err := normalizeProject(p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Store.UpdateProject(ctx, p); err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	if err := s.Store.DeleteProject(c.Request().Context(), c.Param("id")); err != nil {
		return httpErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleProjectStats(c echo.Context) error {
	stats, err := s.Store.Stats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleLearningContext(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := s.Store.Project(ctx, c.Param("id")); err != nil {
		return httpErr(err)
	}
	lc, err := s.Builder.BuildLearningContext(ctx, c.Param("id"), "")
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, lc)
}
