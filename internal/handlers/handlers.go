package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"shorts-backend/internal/middleware"
	"shorts-backend/internal/models"
	"shorts-backend/internal/pipeline"
	"shorts-backend/internal/planner"
)

// ProjectStore is the project persistence the HTTP layer reads and writes.
type ProjectStore interface {
	CreateProject(ctx context.Context, userID uuid.UUID, title, styleID, voice string) (*models.Project, error)
	GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	DeleteProject(ctx context.Context, projectID, userID uuid.UUID) error
	ListProjectFiles(ctx context.Context, projectID uuid.UUID) ([]models.ProjectFile, error)
}

// Submitter starts generation for a draft project.
type Submitter interface {
	Submit(ctx context.Context, project *models.Project, params pipeline.SubmitParams) (*pipeline.Job, error)
}

// ArtifactRemover deletes stored media for a project.
type ArtifactRemover interface {
	DeleteProjectArtifacts(userID, projectID uuid.UUID)
}

// requireUser writes a 401 and returns false when no caller is authenticated.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
	}
	return userID, ok
}

func projectIDParam(c *gin.Context) (uuid.UUID, bool) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return uuid.Nil, false
	}
	return projectID, true
}

// respondError maps domain errors to status codes. Anything unrecognised is a 500
// reported under msg.
func respondError(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pipeline.ErrSegmentNotFound):
		status, msg = http.StatusNotFound, "segment not found"
	case errors.Is(err, models.ErrNotFound):
		status, msg = http.StatusNotFound, "project not found"
	case errors.Is(err, models.ErrInvalidTransition):
		status, msg = http.StatusConflict, "project cannot be generated"
	case errors.Is(err, pipeline.ErrNotEditable):
		status, msg = http.StatusConflict, "project is not editable"
	case errors.Is(err, planner.ErrEmptyScript), errors.Is(err, pipeline.ErrUnknownVoice):
		status, msg = http.StatusBadRequest, "invalid request"
	case errors.Is(err, pipeline.ErrRegenerationFailed):
		status = http.StatusBadGateway
	}
	c.JSON(status, models.ErrorResponse{Error: msg, Message: err.Error()})
}
