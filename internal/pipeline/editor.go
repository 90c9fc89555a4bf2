package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shorts-backend/internal/captions"
	"shorts-backend/internal/config"
	"shorts-backend/internal/media"
	"shorts-backend/internal/models"
)

var (
	ErrSegmentNotFound    = fmt.Errorf("segment %w", models.ErrNotFound)
	ErrNotEditable        = errors.New("project is not editable")
	ErrRegenerationFailed = errors.New("segment regeneration failed")
)

// SegmentStore is the persistence a SegmentEditor writes through. Every
// update touches one field set of one segment.
type SegmentStore interface {
	UpdateSegmentImage(ctx context.Context, segmentID uuid.UUID, imageURL string) error
	UpdateSegmentAudio(ctx context.Context, segmentID uuid.UUID, audioURL string, duration float64, wordTimings json.RawMessage) error
	UpdateSegmentPrompt(ctx context.Context, segmentID uuid.UUID, prompt string) error
	UpdateSegmentText(ctx context.Context, segmentID uuid.UUID, text string) error
	RefreshProjectDuration(ctx context.Context, projectID uuid.UUID) (float64, error)
}

// SegmentMedia produces the media of a single segment.
type SegmentMedia interface {
	GenerateSegmentImage(ctx context.Context, req media.Request, i int) (models.ImageOutcome, error)
	GenerateSegmentAudio(ctx context.Context, req media.Request, i int) (*models.AudioOutcome, error)
}

// ImageEdit overrides the stored prompt or the project image model.
type ImageEdit struct {
	Prompt     string
	ImageModel string
}

// AudioEdit replaces the narration text or the voice of one segment.
type AudioEdit struct {
	Text  string
	Voice string
}

// SegmentEditor regenerates one segment of a finished project.
type SegmentEditor struct {
	store   SegmentStore
	media   SegmentMedia
	catalog *config.Catalog
	logger  zerolog.Logger
}

func NewSegmentEditor(store SegmentStore, media SegmentMedia, catalog *config.Catalog, logger zerolog.Logger) *SegmentEditor {
	return &SegmentEditor{
		store:   store,
		media:   media,
		catalog: catalog,
		logger:  logger.With().Str("component", "editor").Logger(),
	}
}

// RegenerateImage renders a new image for the segment and stores its URL.
// project must carry its segments. The project duration is unchanged.
func (e *SegmentEditor) RegenerateImage(ctx context.Context, project *models.Project, segmentID uuid.UUID, edit ImageEdit) (*models.Segment, error) {
	req, i, err := e.request(project, segmentID)
	if err != nil {
		return nil, err
	}
	prompt := strings.TrimSpace(edit.Prompt)
	if prompt != "" {
		req.Segments[i].ImagePrompt = prompt
	}
	if edit.ImageModel != "" {
		req.ImageModel = edit.ImageModel
	}

	outcome, err := e.media.GenerateSegmentImage(ctx, req, i)
	if err != nil {
		return nil, err
	}
	if !outcome.Success {
		return nil, fmt.Errorf("%w: %s", ErrRegenerationFailed, outcome.Error)
	}

	seg := project.Segments[i]
	if prompt != "" && prompt != seg.ImagePrompt {
		if err := e.store.UpdateSegmentPrompt(ctx, segmentID, prompt); err != nil {
			return nil, err
		}
		seg.ImagePrompt = prompt
	}
	if err := e.store.UpdateSegmentImage(ctx, segmentID, outcome.ImageURL); err != nil {
		return nil, err
	}
	seg.ImageURL.String, seg.ImageURL.Valid = outcome.ImageURL, true

	e.logger.Info().
		Str("project_id", project.ID.String()).
		Int("segment", i).
		Msg("segment image regenerated")
	return &seg, nil
}

// RegenerateAudio synthesizes new narration for the segment, stores its URL,
// duration and word timings, and recomputes the project duration, which is
// returned alongside the segment.
func (e *SegmentEditor) RegenerateAudio(ctx context.Context, project *models.Project, segmentID uuid.UUID, edit AudioEdit) (*models.Segment, float64, error) {
	req, i, err := e.request(project, segmentID)
	if err != nil {
		return nil, 0, err
	}
	if edit.Voice != "" {
		if _, ok := e.catalog.Voice(edit.Voice); !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrUnknownVoice, edit.Voice)
		}
		req.Voice = edit.Voice
	}
	text := strings.TrimSpace(edit.Text)
	if text != "" {
		req.Segments[i].Text = text
	}

	outcome, err := e.media.GenerateSegmentAudio(ctx, req, i)
	if err != nil {
		if errors.Is(err, media.ErrSegmentIndex) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrRegenerationFailed, err)
	}
	timings, err := encodeTimings(outcome.WordTimings)
	if err != nil {
		return nil, 0, err
	}

	seg := project.Segments[i]
	if text != "" && text != seg.Text {
		if err := e.store.UpdateSegmentText(ctx, segmentID, text); err != nil {
			return nil, 0, err
		}
		seg.Text = text
	}
	if err := e.store.UpdateSegmentAudio(ctx, segmentID, outcome.AudioURL, outcome.Duration, timings); err != nil {
		return nil, 0, err
	}
	seg.AudioURL.String, seg.AudioURL.Valid = outcome.AudioURL, true
	seg.Duration = outcome.Duration
	seg.WordTimings = timings

	total, err := e.store.RefreshProjectDuration(ctx, project.ID)
	if err != nil {
		return nil, 0, err
	}

	e.logger.Info().
		Str("project_id", project.ID.String()).
		Int("segment", i).
		Float64("duration", outcome.Duration).
		Float64("project_duration", total).
		Msg("segment audio regenerated")
	return &seg, total, nil
}

// request rebuilds the media request for project and locates the segment.
// Only completed or failed projects can be edited; a generating project is
// still being written by its run.
func (e *SegmentEditor) request(project *models.Project, segmentID uuid.UUID) (media.Request, int, error) {
	if project.Status != models.StatusCompleted && project.Status != models.StatusFailed {
		return media.Request{}, 0, fmt.Errorf("%w: project is %s", ErrNotEditable, project.Status)
	}

	index := -1
	req := media.Request{
		UserID:     project.UserID,
		ProjectID:  project.ID,
		Segments:   make([]models.PlannedSegment, len(project.Segments)),
		SegmentIDs: make([]uuid.UUID, len(project.Segments)),
		Voice:      firstNonEmpty(project.Voice, e.catalog.DefaultVoice),
		Style:      e.catalog.StyleOrDefault(project.StyleID),
		ImageModel: project.ImageModel,
	}
	for i, s := range project.Segments {
		req.Segments[i] = models.PlannedSegment{Order: s.Order, Text: s.Text, ImagePrompt: s.ImagePrompt}
		req.SegmentIDs[i] = s.ID
		if s.ID == segmentID {
			index = i
		}
	}
	if index < 0 {
		return media.Request{}, 0, fmt.Errorf("%w: %s", ErrSegmentNotFound, segmentID)
	}
	return req, index, nil
}

// encodeTimings marshals caption batches for storage; no batches store NULL.
func encodeTimings(batches []captions.WordBatch) (json.RawMessage, error) {
	if len(batches) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(batches)
	if err != nil {
		return nil, fmt.Errorf("failed to encode word timings: %w", err)
	}
	return data, nil
}
