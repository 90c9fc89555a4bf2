package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"shorts-backend/internal/models"
	"shorts-backend/internal/pipeline"
)

type GenerateHandler struct {
	store     ProjectStore
	submitter Submitter
	logger    zerolog.Logger
}

func NewGenerateHandler(store ProjectStore, submitter Submitter, logger zerolog.Logger) *GenerateHandler {
	return &GenerateHandler{
		store:     store,
		submitter: submitter,
		logger:    logger.With().Str("component", "generate").Logger(),
	}
}

// Generate submits a script for an existing draft project. The response is
// sent once the project is generating; media is produced in the background.
func (h *GenerateHandler) Generate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	project, err := h.store.GetProject(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, "failed to get project", err)
		return
	}

	h.submit(c, project, pipeline.SubmitParams{
		Script:     req.Script,
		StyleID:    req.StyleID,
		Voice:      req.Voice,
		ImageModel: req.ImageModel,
	})
}

// CreateVideo creates a project and submits its script in one call.
func (h *GenerateHandler) CreateVideo(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	project, err := h.store.CreateProject(c.Request.Context(), userID, req.Title, req.StyleID, req.Voice)
	if err != nil {
		respondError(c, "failed to create project", err)
		return
	}

	params := pipeline.SubmitParams{
		Script:     req.Script,
		StyleID:    req.StyleID,
		Voice:      req.Voice,
		ImageModel: req.ImageModel,
	}
	if !h.submit(c, project, params) {
		// the draft was only created for this call
		if err := h.store.DeleteProject(c.Request.Context(), project.ID, userID); err != nil {
			h.logger.Warn().Err(err).Str("project_id", project.ID.String()).Msg("failed to remove rejected draft")
		}
	}
}

func (h *GenerateHandler) submit(c *gin.Context, project *models.Project, params pipeline.SubmitParams) bool {
	if _, err := h.submitter.Submit(c.Request.Context(), project, params); err != nil {
		h.logger.Warn().Err(err).Str("project_id", project.ID.String()).Msg("submit rejected")
		respondError(c, "failed to start generation", err)
		return false
	}

	c.JSON(http.StatusAccepted, models.GenerateResponse{
		ProjectID: project.ID.String(),
		Status:    string(project.Status),
	})
	return true
}
