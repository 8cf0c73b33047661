package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"greenroom/pkg/schema"
)

func (s *Server) handleCreateScene(c echo.Context) error {
	var sc schema.Scene
	if err := c.Bind(&sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if sc.EpisodeID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "episode_id is required")
	}
	if err := normalizeScene(&sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Store.CreateScene(c.Request().Context(), &sc); err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusCreated, sc)
}

func (s *Server) handleListScenes(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := s.Store.Episode(ctx, c.Param("id")); err != nil {
		return httpErr(err)
	}
	scenes, err := s.Store.ScenesByEpisode(ctx, c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, scenes)
}

func (s *Server) handleGetScene(c echo.Context) error {
	sc, err := s.Store.Scene(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, sc)
}

func (s *Server) handleUpdateScene(c echo.Context) error {
	ctx := c.Request().Context()
	sc, err := s.Store.Scene(ctx, c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	if err := c.Bind(sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	sc.ID = c.Param("id")
	if err := normalizeScene(sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Store.UpdateScene(ctx, sc); err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, sc)
}

type sceneContentReq struct {
	Content string `json:"content"`
}

// handleUpdateSceneContent is the writer's manual edit path: only the
// content changes and the scene is marked human edited.
func (s *Server) handleUpdateSceneContent(c echo.Context) error {
	var req sceneContentReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	sc, err := s.Store.UpdateSceneContent(c.Request().Context(), c.Param("id"), req.Content)
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, sc)
}

func (s *Server) handleDeleteScene(c echo.Context) error {
	if err := s.Store.DeleteScene(c.Request().Context(), c.Param("id")); err != nil {
		return httpErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGetEvaluation(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := s.Store.Scene(ctx, c.Param("id")); err != nil {
		return httpErr(err)
	}
	ev, err := s.Store.EvaluationByScene(ctx, c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, ev)
}
