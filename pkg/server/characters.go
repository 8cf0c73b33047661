package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"greenroom/pkg/schema"
)

func (s *Server) handleCreateCharacter(c echo.Context) error {
	var ch schema.Character
	if err := c.Bind(&ch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if ch.ProjectID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "project_id is required")
	}
	if strings.TrimSpace(ch.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if err := normalizeCharacter(&ch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Store.CreateCharacter(c.Request().Context(), &ch); err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusCreated, ch)
}

func (s *Server) handleListCharacters(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := s.Store.Project(ctx, c.Param("id")); err != nil {
		return httpErr(err)
	}
	characters, err := s.Store.CharactersByProject(ctx, c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, characters)
}

func (s *Server) handleGetCharacter(c echo.Context) error {
	ch, err := s.Store.Character(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, ch)
}

func (s *Server) handleUpdateCharacter(c echo.Context) error {
	ctx := c.Request().Context()
	ch, err := s.Store.Character(ctx, c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	if err := c.Bind(ch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	ch.ID = c.Param("id")
	if err := normalizeCharacter(ch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Store.UpdateCharacter(ctx, ch); err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, ch)
}

type characterStateReq struct {
	CurrentState string `json:"current_state"`
}

func (s *Server) handleUpdateCharacterState(c echo.Context) error {
	var req characterStateReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	ctx := c.Request().Context()
	if err := s.Store.UpdateCharacterState(ctx, c.Param("id"), req.CurrentState); err != nil {
		return httpErr(err)
	}
	ch, err := s.Store.Character(ctx, c.Param("id"))
	if err != nil {
		return httpErr(err)
	}
	return c.JSON(http.StatusOK, ch)
}

func (s *Server) handleDeleteCharacter(c echo.Context) error {
	if err := s.Store.DeleteCharacter(c.Request().Context(), c.Param("id")); err != nil {
		return httpErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}
