package models

import (
	"time"

	"shorts-backend/internal/captions"
)

type ProjectResponse struct {
	ID           string            `json:"project_id"`
	Title        string            `json:"title"`
	Script       string            `json:"script,omitempty"`
	StyleID      string            `json:"style_id,omitempty"`
	Voice        string            `json:"voice,omitempty"`
	ImageModel   string            `json:"image_model,omitempty"`
	Status       string            `json:"status"`
	Duration     float64           `json:"duration"`
	TotalFrames  int               `json:"total_frames"`
	FailedImages int               `json:"failed_images"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Segments     []SegmentResponse `json:"segments"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type SegmentResponse struct {
	ID          string               `json:"id"`
	Order       int                  `json:"order"`
	Text        string               `json:"text"`
	ImagePrompt string               `json:"image_prompt"`
	ImageURL    string               `json:"image_url,omitempty"`
	AudioURL    string               `json:"audio_url,omitempty"`
	Duration    float64              `json:"duration"`
	WordTimings []captions.WordBatch `json:"word_timings,omitempty"`
}

type ProjectListResponse struct {
	Projects []ProjectSummary `json:"projects"`
}

type ProjectSummary struct {
	ID        string    `json:"project_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Duration  float64   `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SegmentResultResponse returns a regenerated segment with the project
// duration after the change.
type SegmentResultResponse struct {
	Segment         SegmentResponse `json:"segment"`
	ProjectDuration float64         `json:"project_duration"`
}

type GenerateResponse struct {
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
}

type StatusResponse struct {
	ProjectID    string    `json:"project_id"`
	Status       string    `json:"status"`
	Duration     float64   `json:"duration"`
	ErrorMessage string    `json:"error_message,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CaptionResponse struct {
	Frame        int              `json:"frame"`
	TotalFrames  int              `json:"total_frames"`
	SegmentIndex int              `json:"segment_index"`
	SegmentTime  float64          `json:"segment_time"`
	Caption      captions.Caption `json:"caption"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type FileResponse struct {
	ID         string    `json:"id"`
	SegmentID  string    `json:"segment_id,omitempty"`
	FileType   string    `json:"file_type"`
	Filename   string    `json:"filename"`
	StorageURL string    `json:"storage_url"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	CreatedAt  time.Time `json:"created_at"`
}

type FilesResponse struct {
	Files []FileResponse `json:"files"`
}
