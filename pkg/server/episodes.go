package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"greenroom/pkg/compose"
	"greenroom/pkg/schema"
)

func (s *Server) handleCreateEpisode(c echo.Context) error {
	var e schema.Episode
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if e.ProjectID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "project_id is required")
	}
	if err := normalizeEpisode(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Store.CreateEpisode(c.Request().Context(), &e); err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (s *Server) handleListEpisodes(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := s.Store.Project(ctx, c.Param("id")); err != nil {
		return httpErr(err)
	}
	episodes, err := s.Store.EpisodesByProject(ctx, c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, episodes)
}

func (s *Server) handleGetEpisode(c echo.Context) error {
	e, err := s.Store.Episode(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleUpdateEpisode(c echo.Context) error {
	ctx := c.Request().Context()
	e, err := s.Store.Episode(ctx, c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	if err := c.Bind(e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	e.ID = c.Param("id")
	if err := normalizeEpisode(e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Store.UpdateEpisode(ctx, e); err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleDeleteEpisode(c echo.Context) error {
	if err := s.Store.DeleteEpisode(c.Request().Context(), c.Param("id")); err != nil {
		return httpErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleEpisodeScript returns the episode as one continuous script plus
// the per-scene blocks that splitting it back produces.
func (s *Server) handleEpisodeScript(c echo.Context) error {
	ctx := c.Request().Context()
	e, err := s.Store.Episode(ctx, c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	scenes, err := s.Store.ScenesByEpisode(ctx, e.ID)
	if err != nil {
		return httpErr(err)
	}
	script := compose.AssembleScript(scenes)
	return c.JSON(http.StatusOK, map[string]any{
		"episode_id": e.ID,
		"title":      e.Title,
		"script":     script,
		"scenes":     compose.SplitScript(script),
	})
}
