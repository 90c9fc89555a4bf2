package handlers_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"shorts-backend/internal/middleware"
	"shorts-backend/internal/models"
	"shorts-backend/internal/pipeline"
)

type fakeStore struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*models.Project
	files    map[uuid.UUID][]models.ProjectFile
	err      error
	deleted  []uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: map[uuid.UUID]*models.Project{},
		files:    map[uuid.UUID][]models.ProjectFile{},
	}
}

func (s *fakeStore) put(p *models.Project) *models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = models.StatusDraft
	}
	s.projects[p.ID] = p
	return p
}

func (s *fakeStore) CreateProject(ctx context.Context, userID uuid.UUID, title, styleID, voice string) (*models.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := s.put(&models.Project{UserID: userID, Title: title, StyleID: styleID, Voice: voice, CreatedAt: time.Now()})
	cp := *p
	return &cp, nil
}

func (s *fakeStore) GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.projects[projectID]
	if !ok || p.UserID != userID {
		return nil, fmt.Errorf("failed to get project %s: %w", projectID, models.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Project
	for _, p := range s.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteProject(ctx context.Context, projectID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok || p.UserID != userID || p.Status == models.StatusGenerating {
		return models.ErrNotFound
	}
	delete(s.projects, projectID)
	s.deleted = append(s.deleted, projectID)
	return nil
}

func (s *fakeStore) ListProjectFiles(ctx context.Context, projectID uuid.UUID) ([]models.ProjectFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[projectID], nil
}

// fakeSubmitter flips the project to generating the way the orchestrator does.
type fakeSubmitter struct {
	store  *fakeStore
	err    error
	params []pipeline.SubmitParams
}

func (f *fakeSubmitter) Submit(ctx context.Context, project *models.Project, params pipeline.SubmitParams) (*pipeline.Job, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	if !project.Status.CanTransitionTo(models.StatusGenerating) {
		return nil, fmt.Errorf("%w: project is %s", pipeline.ErrInvalidTransition, project.Status)
	}
	project.Status = models.StatusGenerating
	f.store.mu.Lock()
	if p, ok := f.store.projects[project.ID]; ok {
		p.Status = models.StatusGenerating
	}
	f.store.mu.Unlock()
	return &pipeline.Job{ProjectID: project.ID, UserID: project.UserID, Script: params.Script}, nil
}

type fakeRemover struct{ calls []uuid.UUID }

func (f *fakeRemover) DeleteProjectArtifacts(userID, projectID uuid.UUID) {
	f.calls = append(f.calls, projectID)
}

// newRouter skips JWT parsing and authenticates every request as userID.
func newRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(middleware.UserIDKey, userID)
		}
		c.Next()
	})
	return r
}

func request(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func valid(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
