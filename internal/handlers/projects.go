package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"shorts-backend/internal/models"
)

type ProjectsHandler struct {
	store     ProjectStore
	artifacts ArtifactRemover
	logger    zerolog.Logger
}

func NewProjectsHandler(store ProjectStore, artifacts ArtifactRemover, logger zerolog.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		store:     store,
		artifacts: artifacts,
		logger:    logger.With().Str("component", "projects").Logger(),
	}
}

// CreateProject creates an empty draft. The body is optional.
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid request body",
				Message: err.Error(),
			})
			return
		}
	}

	project, err := h.store.CreateProject(c.Request.Context(), userID, req.Title, req.StyleID, req.Voice)
	if err != nil {
		respondError(c, "failed to create project", err)
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(project))
}

func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	projects, err := h.store.ListProjects(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "failed to list projects", err)
		return
	}

	summaries := make([]models.ProjectSummary, len(projects))
	for i, p := range projects {
		summaries[i] = models.ProjectSummary{
			ID:        p.ID.String(),
			Title:     p.Title,
			Status:    string(p.Status),
			Duration:  p.Duration,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		}
	}

	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: summaries})
}

func (h *ProjectsHandler) GetProject(c *gin.Context) {
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

	c.JSON(http.StatusOK, toProjectResponse(project))
}

// DeleteProject removes a project and its stored media. Generating projects
// cannot be deleted.
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
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
	if project.Status == models.StatusGenerating {
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "project is generating"})
		return
	}

	if err := h.store.DeleteProject(c.Request.Context(), projectID, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// lost a race with a submit
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "project is generating", Message: err.Error()})
			return
		}
		respondError(c, "failed to delete project", err)
		return
	}

	if h.artifacts != nil {
		h.artifacts.DeleteProjectArtifacts(userID, projectID)
	}
	h.logger.Info().Str("project_id", projectID.String()).Msg("project deleted")

	c.Status(http.StatusNoContent)
}
