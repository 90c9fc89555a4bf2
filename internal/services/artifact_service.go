package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shorts-backend/internal/models"
	"shorts-backend/internal/supabase"
)

type ObjectStorage interface {
	UploadFile(storagePath, contentType string, data []byte) (string, error)
	DeleteProjectFiles(userID, projectID uuid.UUID) error
}

type FileRecorder interface {
	CreateProjectFile(ctx context.Context, file *models.ProjectFile) error
}

// ArtifactService stores generated segment media and records it in project_files.
type ArtifactService struct {
	storage ObjectStorage
	files   FileRecorder
	logger  zerolog.Logger
}

func NewArtifactService(storage ObjectStorage, files FileRecorder, logger zerolog.Logger) *ArtifactService {
	return &ArtifactService{
		storage: storage,
		files:   files,
		logger:  logger.With().Str("component", "artifacts").Logger(),
	}
}

func (s *ArtifactService) Upload(ctx context.Context, upload models.ArtifactUpload) (*models.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(upload.Data) == 0 {
		return nil, fmt.Errorf("refusing to store empty %s for segment %d", upload.FileType, upload.Index)
	}

	key := supabase.SegmentPath(upload.UserID, upload.ProjectID, upload.SegmentID, upload.Index, upload.Ext)
	url, err := s.storage.UploadFile(key, upload.ContentType, upload.Data)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("key", key).
		Str("file_type", upload.FileType).
		Int("bytes", len(upload.Data)).
		Msg("artifact stored")

	return &models.Artifact{Key: key, URL: url}, nil
}

func (s *ArtifactService) RecordFile(ctx context.Context, file *models.ProjectFile) error {
	return s.files.CreateProjectFile(ctx, file)
}

// DeleteProjectArtifacts removes stored media for a project. Failures are
// logged and ignored.
func (s *ArtifactService) DeleteProjectArtifacts(userID, projectID uuid.UUID) {
	if err := s.storage.DeleteProjectFiles(userID, projectID); err != nil {
		s.logger.Warn().Err(err).Str("project_id", projectID.String()).Msg("failed to delete project artifacts")
	}
}
