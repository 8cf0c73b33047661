// Package server exposes the narrative store and the generation loop
// over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"greenroom/pkg/compose"
	"greenroom/pkg/generate"
	"greenroom/pkg/inference"
	"greenroom/pkg/store"
)

type Server struct {
	Echo      *echo.Echo
	Store     *store.Store
	Registry  *inference.Registry
	Generator *generate.Generator
	Builder   *compose.Builder
	Ctx       context.Context
}

func NewServer(ctx context.Context, st *store.Store, reg *inference.Registry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:      e,
		Store:     st,
		Registry:  reg,
		Generator: generate.New(st, reg),
		Builder:   compose.NewBuilder(st),
		Ctx:       ctx,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")

	api.POST("/projects", s.handleCreateProject)
	api.GET("/projects", s.handleListProjects)
	api.GET("/projects/:id", s.handleGetProject)
	api.PUT("/projects/:id", s.handleUpdateProject)
	api.DELETE("/projects/:id", s.handleDeleteProject)
	api.GET("/projects/:id/stats", s.handleProjectStats)
	api.GET("/projects/:id/episodes", s.handleListEpisodes)
	api.GET("/projects/:id/characters", s.handleListCharacters)
	api.GET("/projects/:id/callbacks", s.handleListCallbacks)
	api.GET("/projects/:id/learning", s.handleLearningContext)

	api.POST("/episodes", s.handleCreateEpisode)
	api.GET("/episodes/:id", s.handleGetEpisode)
	api.PUT("/episodes/:id", s.handleUpdateEpisode)
	api.DELETE("/episodes/:id", s.handleDeleteEpisode)
	api.GET("/episodes/:id/scenes", s.handleListScenes)
	api.GET("/episodes/:id/script", s.handleEpisodeScript)

	api.POST("/scenes", s.handleCreateScene)
	api.GET("/scenes/:id", s.handleGetScene)
	api.PUT("/scenes/:id", s.handleUpdateScene)
	api.PUT("/scenes/:id/content", s.handleUpdateSceneContent)
	api.DELETE("/scenes/:id", s.handleDeleteScene)
	api.GET("/scenes/:id/evaluation", s.handleGetEvaluation)

	api.POST("/characters", s.handleCreateCharacter)
	api.GET("/characters/:id", s.handleGetCharacter)
	api.PUT("/characters/:id", s.handleUpdateCharacter)
	api.PUT("/characters/:id/state", s.handleUpdateCharacterState)
	api.DELETE("/characters/:id", s.handleDeleteCharacter)

	api.POST("/callbacks", s.handleCreateCallback)
	api.POST("/callbacks/:id/resolve", s.handleResolveCallback)
	api.DELETE("/callbacks/:id", s.handleDeleteCallback)

	api.POST("/generate", s.handleGenerate)
	api.POST("/scenes/:id/regenerate", s.handleRegenerate)
	api.POST("/scenes/:id/variations", s.handleVariations)
	api.POST("/scenes/:id/evaluate", s.handleEvaluate)
	api.POST("/evaluate/quick", s.handleQuickEvaluate)
}

func (s *Server) Start(addr string) error {
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.Echo.Shutdown(ctx); err != nil {
		return err
	}
	return s.Store.Close()
}

// httpErr maps store and generation errors onto status codes.
func httpErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, generate.ErrEmptyGoal):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, generate.ErrNoCapability):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
