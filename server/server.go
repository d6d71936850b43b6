// Package server exposes the project registry and the translation analysis
// engine over an HTTP JSON API.
//
// The server also owns the active-project selection: one project per
// session, set via the select/activate endpoints and consumed by every
// translation endpoint. The engine itself is stateless — it receives the
// selected project explicitly on each call.
package server

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/i18ndesk/i18ndesk/analysis"
	"github.com/i18ndesk/i18ndesk/backup"
	"github.com/i18ndesk/i18ndesk/project"
	"github.com/i18ndesk/i18ndesk/review"
)

// maxUploadFiles caps one upload batch.
const maxUploadFiles = 10

// maxUploadSize caps a single uploaded file (10 MB).
const maxUploadSize = 10 << 20

// Server wires the registry, engine, ledger and backup writer to HTTP
// routes.
type Server struct {
	registry *project.Store
	engine   *analysis.Engine
	ledger   *review.Ledger
	backups  *backup.Writer

	mu        sync.Mutex
	currentID string
}

// New returns a server over the given collaborators.
func New(registry *project.Store, engine *analysis.Engine, ledger *review.Ledger, backups *backup.Writer) *Server {
	return &Server{
		registry: registry,
		engine:   engine,
		ledger:   ledger,
		backups:  backups,
	}
}

// setCurrent activates a project by id.
func (s *Server) setCurrent(id string) (*project.Project, error) {
	p, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.currentID = id
	s.mu.Unlock()
	return p, nil
}

// current returns the active project, or nil when none is selected or the
// selected project no longer exists.
func (s *Server) current() *project.Project {
	s.mu.Lock()
	id := s.currentID
	s.mu.Unlock()

	if id == "" {
		return nil
	}
	p, err := s.registry.Get(id)
	if err != nil {
		return nil
	}
	return p
}

// clearCurrent drops the selection when it points at the given project.
func (s *Server) clearCurrent(id string) {
	s.mu.Lock()
	if s.currentID == id {
		s.currentID = ""
	}
	s.mu.Unlock()
}

// Router builds the gin engine with all API routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.MaxMultipartMemory = maxUploadSize

	api := r.Group("/api")
	{
		api.GET("/projects", s.listProjects)
		api.POST("/projects", s.createProject)
		api.GET("/projects/:id", s.getProject)
		api.PUT("/projects/:id", s.updateProject)
		api.DELETE("/projects/:id", s.deleteProject)
		api.POST("/projects/:id/select", s.selectProject)
		api.POST("/projects/:id/activate", s.activateProject)
		api.GET("/projects/:id/refresh", s.refreshProject)
		api.POST("/projects/:id/upload", s.uploadFiles)

		api.GET("/current-project", s.currentProject)
		api.GET("/locales", s.listLocales)

		api.GET("/translations/:locale", s.getTranslations)
		api.PUT("/translations/:locale", s.updateTranslation)
		api.POST("/translations/:locale/bulk", s.bulkUpdate)
		api.POST("/export/:locale", s.exportLocale)

		api.GET("/compare", s.compareLocales)
		api.GET("/stats", s.completionStats)

		api.GET("/review/issues", s.reviewIssues)
		api.POST("/review/:locale/mark", s.markReviewed)
		api.GET("/review/:locale/status", s.reviewStatus)
	}

	return r
}

// requestLogger logs one line per request via zerolog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
