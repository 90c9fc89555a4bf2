package supabase

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	// client serves listing and removal. storage-go writes per-call file
	// options into headers shared by every request on a client, so each
	// upload gets its own client from uploader.
	client   *storage.Client
	uploader func() *storage.Client
	bucket   string
	baseURL  string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) *StorageClient {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	return newStorageClient(storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil), baseURL, serviceRoleKey, bucket)
}

func newStorageClient(client *storage.Client, supabaseURL, serviceRoleKey, bucket string) *StorageClient {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	return &StorageClient{
		client: client,
		uploader: func() *storage.Client {
			return storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)
		},
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// SegmentPath is where a segment artifact lives:
// users/{user}/projects/{project}/segments/{index}_{segment}.{ext}
func SegmentPath(userID, projectID, segmentID uuid.UUID, index int, ext string) string {
	return fmt.Sprintf("users/%s/projects/%s/segments/%d_%s.%s",
		userID.String(), projectID.String(), index, segmentID.String(), ext)
}

// UploadFile stores data at storagePath, replacing any previous object, and
// returns its public URL.
func (s *StorageClient) UploadFile(storagePath, contentType string, data []byte) (string, error) {
	upsert := true

	_, err := s.uploader().UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.GetPublicURL(storagePath), nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}

// DeleteProjectFiles removes every segment artifact of a project.
func (s *StorageClient) DeleteProjectFiles(userID, projectID uuid.UUID) error {
	prefix := fmt.Sprintf("users/%s/projects/%s/segments", userID.String(), projectID.String())

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	if len(files) == 0 {
		return nil
	}

	paths := make([]string, len(files))
	for i, file := range files {
		paths[i] = prefix + "/" + file.Name
	}
	if _, err := s.client.RemoveFile(s.bucket, paths); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}
	return nil
}
