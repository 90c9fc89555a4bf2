package handlers

import (
	"encoding/json"

	"shorts-backend/internal/captions"
	"shorts-backend/internal/models"
)

func toProjectResponse(p *models.Project) models.ProjectResponse {
	resp := models.ProjectResponse{
		ID:           p.ID.String(),
		Title:        p.Title,
		Script:       p.Script,
		StyleID:      p.StyleID,
		Voice:        p.Voice,
		ImageModel:   p.ImageModel,
		Status:       string(p.Status),
		Duration:     p.Duration,
		ErrorMessage: p.ErrorMessage.String,
		Segments:     make([]models.SegmentResponse, len(p.Segments)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}

	durations := make([]float64, len(p.Segments))
	for i, s := range p.Segments {
		resp.Segments[i] = toSegmentResponse(s)
		durations[i] = s.Duration
		if p.Status == models.StatusCompleted && !s.ImageURL.Valid {
			resp.FailedImages++
		}
	}
	if len(p.Segments) > 0 {
		resp.TotalFrames = captions.NewTimeline(durations, captions.FPS).TotalFrames()
	}
	return resp
}

func toSegmentResponse(s models.Segment) models.SegmentResponse {
	return models.SegmentResponse{
		ID:          s.ID.String(),
		Order:       s.Order,
		Text:        s.Text,
		ImagePrompt: s.ImagePrompt,
		ImageURL:    s.ImageURL.String,
		AudioURL:    s.AudioURL.String,
		Duration:    s.Duration,
		WordTimings: wordTimings(s),
	}
}

// wordTimings decodes stored caption batches. Rows without usable timings
// yield nil so callers fall back to the segment text.
func wordTimings(s models.Segment) []captions.WordBatch {
	if len(s.WordTimings) == 0 {
		return nil
	}
	var batches []captions.WordBatch
	if err := json.Unmarshal(s.WordTimings, &batches); err != nil {
		return nil
	}
	return batches
}
