package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/i18ndesk/i18ndesk/analysis"
	"github.com/i18ndesk/i18ndesk/project"
)

// fail translates an engine or registry failure into a transport status:
// 404 for missing resources, 400 for client-caused failures, 500 otherwise.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, project.ErrNotFound),
		errors.Is(err, analysis.ErrLocaleNotFound),
		errors.Is(err, analysis.ErrKeyNotFound):
		status = http.StatusNotFound
	case errors.Is(err, project.ErrValidation),
		errors.Is(err, analysis.ErrNoProject):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, format string, args ...any) {
	c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf(format, args...)})
}

// --- projects ---

func (s *Server) listProjects(c *gin.Context) {
	c.JSON(http.StatusOK, s.registry.List())
}

func (s *Server) getProject(c *gin.Context) {
	p, err := s.registry.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) createProject(c *gin.Context) {
	var req project.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	p, err := s.registry.Create(req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProject(c *gin.Context) {
	var req project.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	p, err := s.registry.Update(c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProject(c *gin.Context) {
	id := c.Param("id")
	if err := s.registry.Delete(id); err != nil {
		fail(c, err)
		return
	}
	// The project's review ledger and backups die with it.
	s.ledger.Remove(id)
	s.backups.Remove(id)
	s.clearCurrent(id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) selectProject(c *gin.Context) {
	p, err := s.setCurrent(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) activateProject(c *gin.Context) {
	p, err := s.setCurrent(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project": p,
		"locales": s.engine.AvailableLocales(p),
		"stats":   s.engine.ProgressStats(p),
	})
}

func (s *Server) refreshProject(c *gin.Context) {
	p, err := s.registry.Refresh(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) uploadFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "invalid multipart form: %v", err)
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		badRequest(c, "no files uploaded")
		return
	}
	if len(headers) > maxUploadFiles {
		badRequest(c, "too many files: limit is %d", maxUploadFiles)
		return
	}

	files := make([]project.UploadFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > maxUploadSize {
			badRequest(c, "file %s exceeds the %d byte limit", fh.Filename, maxUploadSize)
			return
		}
		src, err := fh.Open()
		if err != nil {
			badRequest(c, "reading %s: %v", fh.Filename, err)
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			badRequest(c, "reading %s: %v", fh.Filename, err)
			return
		}
		files = append(files, project.UploadFile{Name: fh.Filename, Data: data})
	}

	result, err := s.registry.ProcessUploads(c.Param("id"), files)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) currentProject(c *gin.Context) {
	p := s.current()
	if p == nil {
		c.JSON(http.StatusOK, gin.H{"selected": false})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) listLocales(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.AvailableLocales(s.current()))
}

// --- translations ---

func (s *Server) getTranslations(c *gin.Context) {
	translations, err := s.engine.LoadTranslations(s.current(), c.Param("locale"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, translations)
}

func (s *Server) updateTranslation(c *gin.Context) {
	var body struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	if body.Key == "" {
		badRequest(c, "key is required")
		return
	}
	result, err := s.engine.UpdateTranslation(s.current(), c.Param("locale"), body.Key, body.Value)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) bulkUpdate(c *gin.Context) {
	var body struct {
		Translations []analysis.BulkEntry `json:"translations"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	result, err := s.engine.BulkUpdateTranslations(s.current(), c.Param("locale"), body.Translations)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) exportLocale(c *gin.Context) {
	path, err := s.engine.ExportPath(s.current(), c.Param("locale"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": path})
}

func (s *Server) compareLocales(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.CompareLocales(s.current()))
}

func (s *Server) completionStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.CompletionStats(s.current()))
}

// --- review ---

func (s *Server) reviewIssues(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.ReviewIssues(s.current()))
}

func (s *Server) markReviewed(c *gin.Context) {
	var body struct {
		Keys json.RawMessage `json:"keys"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}

	// keys accepts a single string or a list of strings.
	var keys []string
	if err := json.Unmarshal(body.Keys, &keys); err != nil {
		var single string
		if err := json.Unmarshal(body.Keys, &single); err != nil {
			badRequest(c, "keys must be a string or an array of strings")
			return
		}
		keys = []string{single}
	}

	count, err := s.engine.MarkReviewed(s.current(), c.Param("locale"), keys)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reviewed": count})
}

func (s *Server) reviewStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.ReviewStatus(s.current(), c.Param("locale")))
}
