package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"shorts-backend/internal/models"
)

type FilesHandler struct {
	store ProjectStore
}

func NewFilesHandler(store ProjectStore) *FilesHandler {
	return &FilesHandler{store: store}
}

// GetFiles lists the generated media recorded for a project.
func (h *FilesHandler) GetFiles(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	// Verify project belongs to user
	if _, err := h.store.GetProject(c.Request.Context(), projectID, userID); err != nil {
		respondError(c, "failed to get project", err)
		return
	}

	files, err := h.store.ListProjectFiles(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, "failed to get files", err)
		return
	}

	fileResponses := make([]models.FileResponse, len(files))
	for i, file := range files {
		fileResponses[i] = models.FileResponse{
			ID:         file.ID.String(),
			FileType:   file.FileType,
			Filename:   file.Filename,
			StorageURL: file.StorageURL,
			FileSize:   file.FileSize.Int64,
			MimeType:   file.MimeType,
			CreatedAt:  file.CreatedAt,
		}
		if file.SegmentID.Valid {
			fileResponses[i].SegmentID = file.SegmentID.UUID.String()
		}
	}

	c.JSON(http.StatusOK, models.FilesResponse{Files: fileResponses})
}
