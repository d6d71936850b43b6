// Package project implements the durable project registry: CRUD over a
// single JSON array file plus locale detection and aggregate statistics
// for each project's source directory.
package project

import (
	"time"
)

// SourceType says where a project's locale files live.
type SourceType string

const (
	// SourceDirectory: locale files in a user-specified directory.
	SourceDirectory SourceType = "directory"
	// SourceUpload: locale files in server-managed storage, populated
	// via file upload.
	SourceUpload SourceType = "upload"
)

// LocaleInfo describes one detected locale file. Derived on every scan of
// the source directory; the copy cached on Project is a snapshot, not
// authoritative state — the .json files themselves are.
type LocaleInfo struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	File   string `json:"file"`
	Keys   int    `json:"keys"`
	Exists bool   `json:"exists"`
}

// LocaleStats holds per-locale key counts for the stats snapshot.
type LocaleStats struct {
	Keys       int `json:"keys"`
	Empty      int `json:"empty"`
	Completion int `json:"completion"`
}

// Stats is the aggregate snapshot over all locales of a project.
type Stats struct {
	TotalKeys int                    `json:"totalKeys"`
	Locales   map[string]LocaleStats `json:"locales"`
}

// Project is one registry record.
type Project struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	SourceType  SourceType   `json:"sourceType"`
	SourcePath  string       `json:"sourcePath"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Locales     []LocaleInfo `json:"locales"`
	Stats       Stats        `json:"stats"`
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	SourceType  SourceType `json:"sourceType"`
	SourcePath  string     `json:"sourcePath"`
}

// UpdateRequest defines partial project updates. Nil fields are left
// untouched. Setting SourcePath switches the project to a directory source.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	SourcePath  *string `json:"sourcePath"`
}

// UploadFile is one raw uploaded locale file.
type UploadFile struct {
	Name string
	Data []byte
}

// UploadFileResult reports the outcome for one uploaded file.
type UploadFileResult struct {
	Filename string `json:"filename"`
	Success  bool   `json:"success"`
	Keys     int    `json:"keys,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UploadResult is the outcome of an upload batch.
type UploadResult struct {
	Results []UploadFileResult `json:"results"`
	Project *Project           `json:"project"`
}
