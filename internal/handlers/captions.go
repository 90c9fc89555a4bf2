package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"shorts-backend/internal/captions"
	"shorts-backend/internal/models"
)

type CaptionsHandler struct {
	store ProjectStore
}

func NewCaptionsHandler(store ProjectStore) *CaptionsHandler {
	return &CaptionsHandler{store: store}
}

// GetCaption returns the caption drawn at a global frame of the project video.
func (h *CaptionsHandler) GetCaption(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	frame, err := strconv.Atoi(c.DefaultQuery("frame", "0"))
	if err != nil || frame < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid frame"})
		return
	}

	project, err := h.store.GetProject(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, "failed to get project", err)
		return
	}
	if len(project.Segments) == 0 {
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "project has no segments"})
		return
	}

	durations := make([]float64, len(project.Segments))
	for i, s := range project.Segments {
		durations[i] = s.Duration
	}
	timeline := captions.NewTimeline(durations, captions.FPS)
	index, segmentTime := timeline.Locate(frame)
	segment := project.Segments[index]

	c.JSON(http.StatusOK, models.CaptionResponse{
		Frame:        frame,
		TotalFrames:  timeline.TotalFrames(),
		SegmentIndex: index,
		SegmentTime:  segmentTime,
		Caption:      captions.Resolve(wordTimings(segment), segmentTime, segment.Text),
	})
}
