package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i18ndesk/i18ndesk/langmeta"
	"github.com/i18ndesk/i18ndesk/localefile"
)

// RegistryFileName is the projects registry file under the data directory.
const RegistryFileName = "projects.json"

// Store persists the project registry as one JSON array file and manages
// upload-type projects' storage directories.
type Store struct {
	dataDir    string
	uploadsDir string

	mu sync.Mutex
}

// NewStore returns a store writing data/projects.json under dataDir and
// upload storage under uploadsDir.
func NewStore(dataDir, uploadsDir string) *Store {
	return &Store{dataDir: dataDir, uploadsDir: uploadsDir}
}

func (s *Store) registryPath() string {
	return filepath.Join(s.dataDir, RegistryFileName)
}

// load reads the registry. A missing or corrupted file is recovered as an
// empty project list rather than an error.
func (s *Store) load() []*Project {
	data, err := os.ReadFile(s.registryPath())
	if err != nil {
		return []*Project{}
	}
	var projects []*Project
	if err := json.Unmarshal(data, &projects); err != nil || projects == nil {
		return []*Project{}
	}
	return projects
}

func (s *Store) save(projects []*Project) error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if projects == nil {
		projects = []*Project{}
	}
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling registry: %w", err)
	}
	if err := os.WriteFile(s.registryPath(), data, 0644); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	return nil
}

// List returns all registered projects.
func (s *Store) List() []*Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns a project by id.
func (s *Store) Get(id string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(s.load(), id)
}

func (s *Store) find(projects []*Project, id string) (*Project, error) {
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Create registers a new project. Directory sources are absolute-resolved
// and must exist; upload sources get a fresh storage directory under the
// uploads root.
func (s *Store) Create(req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.SourceType != SourceDirectory && req.SourceType != SourceUpload {
		return nil, fmt.Errorf("%w: sourceType must be %q or %q", ErrValidation, SourceDirectory, SourceUpload)
	}

	now := time.Now().UTC()
	p := &Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		SourceType:  req.SourceType,
		SourcePath:  req.SourcePath,
		CreatedAt:   now,
		UpdatedAt:   now,
		Locales:     []LocaleInfo{},
		Stats:       Stats{Locales: map[string]LocaleStats{}},
	}

	switch p.SourceType {
	case SourceUpload:
		p.SourcePath = filepath.Join(s.uploadsDir, p.ID)
		if err := os.MkdirAll(p.SourcePath, 0755); err != nil {
			return nil, fmt.Errorf("creating upload storage: %w", err)
		}
	case SourceDirectory:
		if strings.TrimSpace(p.SourcePath) == "" {
			return nil, fmt.Errorf("%w: sourcePath is required for directory projects", ErrValidation)
		}
		resolved, err := filepath.Abs(p.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if _, err := os.Stat(resolved); err != nil {
			return nil, fmt.Errorf("%w: directory not found: %s", ErrValidation, resolved)
		}
		p.SourcePath = resolved
	}

	s.rescan(p)

	s.mu.Lock()
	defer s.mu.Unlock()
	projects := append(s.load(), p)
	if err := s.save(projects); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies a partial update and re-scans locales and stats.
func (s *Store) Update(id string, req UpdateRequest) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := s.load()
	p, err := s.find(projects, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.SourcePath != nil {
		resolved, err := filepath.Abs(*req.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if _, err := os.Stat(resolved); err != nil {
			return nil, fmt.Errorf("%w: directory not found: %s", ErrValidation, resolved)
		}
		p.SourcePath = resolved
		p.SourceType = SourceDirectory
	}

	p.UpdatedAt = time.Now().UTC()
	s.rescan(p)

	if err := s.save(projects); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the project's upload storage (when upload-sourced) and
// drops its registry record. Storage removal is best-effort; record removal
// is not.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := s.load()
	p, err := s.find(projects, id)
	if err != nil {
		return err
	}

	if p.SourceType == SourceUpload && p.SourcePath != "" {
		_ = os.RemoveAll(p.SourcePath)
	}

	filtered := projects[:0]
	for _, q := range projects {
		if q.ID != id {
			filtered = append(filtered, q)
		}
	}
	return s.save(filtered)
}

// Refresh re-scans a project's locales and stats from its source directory.
func (s *Store) Refresh(id string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := s.load()
	p, err := s.find(projects, id)
	if err != nil {
		return nil, err
	}

	if s.rescan(p) {
		p.UpdatedAt = time.Now().UTC()
		if err := s.save(projects); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ProcessUploads parses each raw buffer as a flat locale JSON map, writes
// valid ones into the project's storage directory under the original
// filename, and re-scans. Per-file failures are recorded, not propagated.
func (s *Store) ProcessUploads(id string, files []UploadFile) (*UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := s.load()
	p, err := s.find(projects, id)
	if err != nil {
		return nil, err
	}
	if p.SourceType != SourceUpload {
		return nil, fmt.Errorf("%w: project does not accept uploads", ErrValidation)
	}

	if p.SourcePath == "" {
		p.SourcePath = filepath.Join(s.uploadsDir, p.ID)
	}
	if err := os.MkdirAll(p.SourcePath, 0755); err != nil {
		return nil, fmt.Errorf("creating upload storage: %w", err)
	}

	results := make([]UploadFileResult, 0, len(files))
	for _, file := range files {
		f, err := localefile.Parse(file.Data)
		if err != nil {
			results = append(results, UploadFileResult{
				Filename: file.Name,
				Error:    err.Error(),
			})
			continue
		}
		// Basename only: uploaded names must not escape the storage dir.
		dest := filepath.Join(p.SourcePath, filepath.Base(file.Name))
		if err := f.WriteFile(dest); err != nil {
			results = append(results, UploadFileResult{
				Filename: file.Name,
				Error:    err.Error(),
			})
			continue
		}
		results = append(results, UploadFileResult{
			Filename: file.Name,
			Success:  true,
			Keys:     f.Len(),
		})
	}

	s.rescan(p)
	p.UpdatedAt = time.Now().UTC()
	if err := s.save(projects); err != nil {
		return nil, err
	}

	return &UploadResult{Results: results, Project: p}, nil
}

// rescan refreshes the cached locales and stats snapshots. Reports whether
// a scan actually ran (the source path existed).
func (s *Store) rescan(p *Project) bool {
	if p.SourcePath == "" {
		return false
	}
	if _, err := os.Stat(p.SourcePath); err != nil {
		return false
	}
	p.Locales = DetectLocales(p.SourcePath)
	p.Stats = CalculateStats(p.SourcePath, p.Locales)
	return true
}

// DetectLocales lists the {code}.json locale files in a source directory.
// A missing directory yields an empty list; unparseable files are listed
// with a zero key count.
func DetectLocales(sourcePath string) []LocaleInfo {
	entries, err := os.ReadDir(sourcePath)
	if err != nil {
		return []LocaleInfo{}
	}

	locales := []LocaleInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		code := strings.TrimSuffix(name, ".json")
		info := LocaleInfo{
			Code:   code,
			Name:   langmeta.Name(code),
			File:   name,
			Exists: true,
		}
		if f, err := localefile.ParseFile(filepath.Join(sourcePath, name)); err == nil {
			info.Keys = f.Len()
		}
		locales = append(locales, info)
	}
	return locales
}

// CalculateStats computes the union key count and per-locale key, empty and
// completion figures over the detected locales.
func CalculateStats(sourcePath string, locales []LocaleInfo) Stats {
	stats := Stats{Locales: map[string]LocaleStats{}}

	allKeys := make(map[string]struct{})
	for _, info := range locales {
		f, err := localefile.ParseFile(filepath.Join(sourcePath, info.File))
		if err != nil {
			continue
		}
		for _, k := range f.Keys() {
			allKeys[k] = struct{}{}
		}

		total, empty := f.Stats()
		completion := 0
		if total > 0 {
			completion = int(float64(total-empty)/float64(total)*100 + 0.5)
		}
		stats.Locales[info.Code] = LocaleStats{
			Keys:       total,
			Empty:      empty,
			Completion: completion,
		}
	}

	stats.TotalKeys = len(allKeys)
	return stats
}
