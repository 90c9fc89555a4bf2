package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"shorts-backend/internal/models"
)

type StatusHandler struct {
	store ProjectStore
}

func NewStatusHandler(store ProjectStore) *StatusHandler {
	return &StatusHandler{store: store}
}

func (h *StatusHandler) GetStatus(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	project, err := h.store.GetProject(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, "failed to get project", err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		ProjectID:    projectID.String(),
		Status:       string(project.Status),
		Duration:     project.Duration,
		ErrorMessage: project.ErrorMessage.String,
		UpdatedAt:    project.UpdatedAt,
	})
}
