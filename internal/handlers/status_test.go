package handlers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shorts-backend/internal/handlers"
	"shorts-backend/internal/models"
)

func TestGetStatus(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	p := store.put(&models.Project{UserID: userID, Status: models.StatusFailed, ErrorMessage: valid("planning failed: prompt count mismatch")})

	r := newRouter(userID)
	r.GET("/projects/:project_id/status", handlers.NewStatusHandler(store).GetStatus)

	w := request(t, r, http.MethodGet, "/projects/"+p.ID.String()+"/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.StatusResponse](t, w)
	assert.Equal(t, p.ID.String(), resp.ProjectID)
	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, "planning failed: prompt count mismatch", resp.ErrorMessage)

	w = request(t, r, http.MethodGet, "/projects/"+uuid.NewString()+"/status", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetFiles(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	p := store.put(&models.Project{UserID: userID, Status: models.StatusCompleted})
	segID := uuid.New()
	store.files[p.ID] = []models.ProjectFile{{
		ID:         uuid.New(),
		ProjectID:  p.ID,
		SegmentID:  uuid.NullUUID{UUID: segID, Valid: true},
		FileType:   models.FileTypeAudio,
		Filename:   "0_" + segID.String() + ".mp3",
		StorageURL: "https://cdn/0.mp3",
		MimeType:   "audio/mpeg",
	}}

	r := newRouter(userID)
	r.GET("/projects/:project_id/files", handlers.NewFilesHandler(store).GetFiles)

	w := request(t, r, http.MethodGet, "/projects/"+p.ID.String()+"/files", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.FilesResponse](t, w)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, segID.String(), resp.Files[0].SegmentID)
	assert.Equal(t, "audio", resp.Files[0].FileType)
	assert.Equal(t, "https://cdn/0.mp3", resp.Files[0].StorageURL)
}
