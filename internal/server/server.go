// Package server exposes the business operations as a local JSON API.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/logging"
)

// Server is the local JSON API.
type Server struct {
	api    api.BusinessAPI
	router *gin.Engine
	addr   string
}

// New creates a server for b. The gin mode is taken from cfg.
func New(b api.BusinessAPI, cfg config.ServerConfig) *Server {
	gin.SetMode(cfg.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{api: b, router: router, addr: cfg.Addr}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router.Group("/api")
	{
		r.GET("/projects", s.listProjects)
		r.POST("/projects", s.createProject)
		r.PATCH("/projects/:id", s.updateProject)
		r.DELETE("/projects/:id", s.deleteProject)
		r.GET("/projects/:id/stats", s.projectStats)

		r.GET("/tasks", s.listTasks)
		r.POST("/tasks", s.createTask)
		r.GET("/tasks/:id", s.getTask)
		r.PATCH("/tasks/:id", s.updateTask)
		r.DELETE("/tasks/:id", s.deleteTask)
		r.POST("/tasks/:id/archive", s.archiveTask)
		r.POST("/tasks/:id/restore", s.restoreTask)
		r.POST("/tasks/:id/time", s.addTime)
		r.POST("/tasks/:id/subtasks", s.addSubtask)
		r.POST("/tasks/:id/subtasks/:subtaskID/toggle", s.toggleSubtask)
		r.DELETE("/tasks/:id/subtasks/:subtaskID", s.deleteSubtask)
		r.PUT("/sort", s.setSort)

		r.GET("/focus", s.currentFocus)
		r.POST("/focus", s.startFocus)
		r.DELETE("/focus", s.stopFocus)

		r.GET("/chart", s.chart)

		r.POST("/login", s.login)
		r.POST("/logout", s.logout)
		r.GET("/status", s.status)
		r.POST("/sync", s.sync)
	}
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Debugf("server: listening on %s", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debugf("server: %s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
