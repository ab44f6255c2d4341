// Package server exposes the live contexts over HTTP: a JSON REST API
// under /api and a websocket change feed at /api/events.
package server

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mesh-intelligence/casebook/internal/live"
	"github.com/mesh-intelligence/casebook/internal/repo"
	"github.com/mesh-intelligence/casebook/internal/session"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

// Server serves the REST API and the change feed.
type Server struct {
	store    types.Store
	projects *live.ProjectContext
	cases    *live.CaseContext
	runs     *repo.TestRunRepo
	sessions *session.Provider
	echo     *echo.Echo
}

// New wires a server over already-constructed contexts. The caller
// owns the store and context lifecycles.
func New(store types.Store, projects *live.ProjectContext, cases *live.CaseContext, runs *repo.TestRunRepo, sessions *session.Provider) *Server {
	s := &Server{
		store:    store,
		projects: projects,
		cases:    cases,
		runs:     runs,
		sessions: sessions,
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			glog.V(2).Infof("http: %s %s -> %d", c.Request().Method, c.Request().RequestURI, c.Response().Status)
			return err
		}
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	api.POST("/sign-in", s.handleSignIn)
	api.POST("/sign-out", s.handleSignOut)
	api.POST("/register", s.handleRegister)

	api.GET("/projects", s.handleProjects)
	api.POST("/projects", s.handleProjectCreate)
	api.PUT("/projects/:id", s.handleProjectUpdate)
	api.DELETE("/projects/:id", s.handleProjectDelete)
	api.POST("/projects/:id/select", s.handleProjectSelect)

	api.GET("/test-cases", s.handleCases)
	api.POST("/test-cases", s.handleCaseCreate)
	api.GET("/test-cases/:id", s.handleCaseGet)
	api.PUT("/test-cases/:id", s.handleCaseUpdate)
	api.DELETE("/test-cases/:id", s.handleCaseDelete)

	api.GET("/folders", s.handleFolders)
	api.POST("/folders", s.handleFolderCreate)
	api.PUT("/folders/:id", s.handleFolderUpdate)
	api.DELETE("/folders/:id", s.handleFolderDelete)
	api.POST("/folders/:id/select", s.handleFolderSelect)

	api.GET("/runs", s.handleRuns)
	api.POST("/runs", s.handleRunCreate)
	api.GET("/runs/:id/results", s.handleRunResults)
	api.POST("/runs/:id/results", s.handleResultCreate)
	api.PUT("/results/:id", s.handleResultUpdate)

	api.GET("/events", s.handleEvents)

	s.echo = e
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	glog.Infof("server: listening on %s", addr)
	err := s.echo.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
