package models

type CreateProjectRequest struct {
	Title   string `json:"title,omitempty"`
	StyleID string `json:"style_id,omitempty"`
	Voice   string `json:"voice,omitempty"`
}

// GenerateRequest submits a script for an existing draft project.
type GenerateRequest struct {
	Script     string `json:"script" binding:"required"`
	StyleID    string `json:"style_id,omitempty"`
	Voice      string `json:"voice,omitempty"`
	ImageModel string `json:"image_model,omitempty"`
}

// CreateVideoRequest creates a project and submits its script in one call.
type CreateVideoRequest struct {
	Title      string `json:"title,omitempty"`
	Script     string `json:"script" binding:"required"`
	StyleID    string `json:"style_id,omitempty"`
	Voice      string `json:"voice,omitempty"`
	ImageModel string `json:"image_model,omitempty"`
}

// RegenerateImageRequest optionally replaces the prompt or image model used
// for one segment.
type RegenerateImageRequest struct {
	Prompt     string `json:"prompt,omitempty"`
	ImageModel string `json:"image_model,omitempty"`
}

// RegenerateAudioRequest optionally replaces the narration text or voice of
// one segment.
type RegenerateAudioRequest struct {
	Text  string `json:"text,omitempty"`
	Voice string `json:"voice,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
