// Package httpapi is the HTTP surface of the server. It is a thin layer:
// handlers translate requests into service calls and map outcome kinds onto
// status codes; all authorization decisions happen below, in the services.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mlebedeva/projectdock/internal/logging"
	"github.com/mlebedeva/projectdock/internal/server/config"
	"github.com/mlebedeva/projectdock/internal/server/services"
)

type Server struct {
	address  string
	users    *services.UserService
	projects *services.ProjectService
	assets   *services.AssetService
	limiter  *ipRateLimiter
	logger   logging.Logger
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService, ps *services.ProjectService, as *services.AssetService) *Server {
	return &Server{
		address:  cfg.EndpointAddr,
		users:    us,
		projects: ps,
		assets:   as,
		limiter:  newIPRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst),
		logger:   l.With("module", "http_server"),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.newRouter(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestIDMiddleware)

	r.POST("/auth", s.handleRegister)
	r.POST("/login", s.rateLimitLogin, s.handleLogin)

	authed := r.Group("/", s.authMiddleware)
	{
		authed.POST("/projects", s.handleCreateProject)
		authed.GET("/projects", s.handleListProjects)
		authed.GET("/project/:id/info", s.handleGetProject)
		authed.PUT("/project/:id/info", s.handleUpdateProject)
		authed.DELETE("/project/:id", s.handleDeleteProject)
		authed.POST("/projects/:id/invite", s.handleInvite)

		authed.GET("/project/:id/documents", s.handleListDocuments)
		authed.POST("/project/:id/documents", s.handleUploadDocuments)
		authed.GET("/document/:id", s.handleDownloadDocument)
		authed.PUT("/document/:id", s.handleUpdateDocument)
		authed.DELETE("/document/:id", s.handleDeleteDocument)

		authed.PUT("/project/:id/logo", s.handleUploadLogo)
		authed.GET("/project/:id/logo", s.handleDownloadLogo)
		authed.DELETE("/project/:id/logo", s.handleDeleteLogo)
	}

	return r
}
