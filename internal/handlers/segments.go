package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"shorts-backend/internal/models"
	"shorts-backend/internal/pipeline"
)

// SegmentRegenerator redoes the media of one segment of a finished project.
type SegmentRegenerator interface {
	RegenerateImage(ctx context.Context, project *models.Project, segmentID uuid.UUID, edit pipeline.ImageEdit) (*models.Segment, error)
	RegenerateAudio(ctx context.Context, project *models.Project, segmentID uuid.UUID, edit pipeline.AudioEdit) (*models.Segment, float64, error)
}

type SegmentsHandler struct {
	store  ProjectStore
	editor SegmentRegenerator
	logger zerolog.Logger
}

func NewSegmentsHandler(store ProjectStore, editor SegmentRegenerator, logger zerolog.Logger) *SegmentsHandler {
	return &SegmentsHandler{
		store:  store,
		editor: editor,
		logger: logger.With().Str("component", "segments").Logger(),
	}
}

// RegenerateImage renders a new image for one segment. The call blocks until
// the image is stored.
func (h *SegmentsHandler) RegenerateImage(c *gin.Context) {
	var req models.RegenerateImageRequest
	project, segmentID, ok := h.load(c, &req)
	if !ok {
		return
	}

	seg, err := h.editor.RegenerateImage(c.Request.Context(), project, segmentID, pipeline.ImageEdit{
		Prompt:     req.Prompt,
		ImageModel: req.ImageModel,
	})
	if err != nil {
		h.logger.Warn().Err(err).Str("segment_id", segmentID.String()).Msg("image regeneration failed")
		respondError(c, "failed to regenerate image", err)
		return
	}

	c.JSON(http.StatusOK, models.SegmentResultResponse{
		Segment:         toSegmentResponse(*seg),
		ProjectDuration: project.Duration,
	})
}

// RegenerateAudio synthesizes new narration for one segment and returns the
// recomputed project duration.
func (h *SegmentsHandler) RegenerateAudio(c *gin.Context) {
	var req models.RegenerateAudioRequest
	project, segmentID, ok := h.load(c, &req)
	if !ok {
		return
	}

	seg, total, err := h.editor.RegenerateAudio(c.Request.Context(), project, segmentID, pipeline.AudioEdit{
		Text:  req.Text,
		Voice: req.Voice,
	})
	if err != nil {
		h.logger.Warn().Err(err).Str("segment_id", segmentID.String()).Msg("audio regeneration failed")
		respondError(c, "failed to regenerate audio", err)
		return
	}

	c.JSON(http.StatusOK, models.SegmentResultResponse{
		Segment:         toSegmentResponse(*seg),
		ProjectDuration: total,
	})
}

// load authenticates, parses ids and the optional body, and fetches the
// project with its segments.
func (h *SegmentsHandler) load(c *gin.Context, body any) (*models.Project, uuid.UUID, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return nil, uuid.Nil, false
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return nil, uuid.Nil, false
	}
	segmentID, err := uuid.Parse(c.Param("segment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid segment id"})
		return nil, uuid.Nil, false
	}

	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid request body",
				Message: err.Error(),
			})
			return nil, uuid.Nil, false
		}
	}

	project, err := h.store.GetProject(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, "failed to get project", err)
		return nil, uuid.Nil, false
	}
	return project, segmentID, true
}
