package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid project status transition")
)

type ProjectStatus string

const (
	StatusDraft      ProjectStatus = "draft"
	StatusGenerating ProjectStatus = "generating"
	StatusCompleted  ProjectStatus = "completed"
	StatusFailed     ProjectStatus = "failed"
)

// CanTransitionTo reports whether a project may move from s to next.
// Only draft->generating, generating->completed and generating->failed are allowed.
func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusGenerating
	case StatusGenerating:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusGenerating, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

type Project struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	Script       string
	StyleID      string
	Voice        string
	ImageModel   string
	Status       ProjectStatus
	Duration     float64
	ErrorMessage sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Segments     []Segment
}

type Segment struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Order       int
	Text        string
	ImagePrompt string
	ImageURL    sql.NullString
	AudioURL    sql.NullString
	Duration    float64
	WordTimings json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProjectFile struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	SegmentID   uuid.NullUUID
	UserID      uuid.UUID
	FileType    string
	Filename    string
	StoragePath string
	StorageURL  string
	FileSize    sql.NullInt64
	MimeType    string
	Metadata    json.RawMessage
	CreatedAt   time.Time
}

const (
	FileTypeImage = "image"
	FileTypeAudio = "audio"
)
