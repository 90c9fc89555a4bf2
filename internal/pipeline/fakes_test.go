package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"shorts-backend/internal/captions"
	"shorts-backend/internal/media"
	"shorts-backend/internal/models"
)

type memStore struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*models.Project
	segments map[uuid.UUID]*models.Segment
	failErr  error
}

func newMemStore() *memStore {
	return &memStore{
		projects: map[uuid.UUID]*models.Project{},
		segments: map[uuid.UUID]*models.Segment{},
	}
}

func (s *memStore) addDraft() *models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Project{ID: uuid.New(), UserID: uuid.New(), Status: models.StatusDraft}
	s.projects[p.ID] = p
	cp := *p
	return &cp
}

func (s *memStore) status(id uuid.UUID) models.ProjectStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects[id].Status
}

func (s *memStore) project(id uuid.UUID) models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *s.projects[id]
	for _, seg := range s.segments {
		if seg.ProjectID == id {
			p.Segments = append(p.Segments, *seg)
		}
	}
	for i := 1; i < len(p.Segments); i++ {
		for j := i; j > 0 && p.Segments[j].Order < p.Segments[j-1].Order; j-- {
			p.Segments[j], p.Segments[j-1] = p.Segments[j-1], p.Segments[j]
		}
	}
	return p
}

func (s *memStore) cas(id uuid.UUID, from, to models.ProjectStatus, apply func(*models.Project)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return models.ErrNotFound
	}
	if p.Status != from {
		return fmt.Errorf("%w: project is %s, expected %s", models.ErrInvalidTransition, p.Status, from)
	}
	p.Status = to
	if apply != nil {
		apply(p)
	}
	return nil
}

func (s *memStore) BeginGeneration(ctx context.Context, id uuid.UUID, script, styleID, voice, imageModel string) error {
	return s.cas(id, models.StatusDraft, models.StatusGenerating, func(p *models.Project) {
		p.Script, p.StyleID, p.Voice, p.ImageModel = script, styleID, voice, imageModel
	})
}

func (s *memStore) CreateSegmentsBatch(ctx context.Context, projectID uuid.UUID, planned []models.PlannedSegment, durations []float64) ([]models.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Segment, len(planned))
	for i, p := range planned {
		seg := &models.Segment{
			ID:          uuid.New(),
			ProjectID:   projectID,
			Order:       p.Order,
			Text:        p.Text,
			ImagePrompt: p.ImagePrompt,
			Duration:    durations[i],
		}
		s.segments[seg.ID] = seg
		out[i] = *seg
	}
	return out, nil
}

func (s *memStore) UpdateSegmentImage(ctx context.Context, id uuid.UUID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg, ok := s.segments[id]
	if !ok {
		return models.ErrNotFound
	}
	seg.ImageURL.String, seg.ImageURL.Valid = url, true
	return nil
}

func (s *memStore) UpdateSegmentAudio(ctx context.Context, id uuid.UUID, url string, duration float64, timings json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg, ok := s.segments[id]
	if !ok {
		return models.ErrNotFound
	}
	seg.AudioURL.String, seg.AudioURL.Valid = url, true
	seg.Duration = duration
	seg.WordTimings = timings
	return nil
}

func (s *memStore) CompleteProject(ctx context.Context, id uuid.UUID, duration float64) error {
	return s.cas(id, models.StatusGenerating, models.StatusCompleted, func(p *models.Project) {
		p.Duration = duration
	})
}

func (s *memStore) FailProject(ctx context.Context, id uuid.UUID, msg string) error {
	if s.failErr != nil {
		return s.failErr
	}
	return s.cas(id, models.StatusGenerating, models.StatusFailed, func(p *models.Project) {
		p.ErrorMessage.String, p.ErrorMessage.Valid = msg, true
	})
}

type fakePlanner struct {
	segments []models.PlannedSegment
	err      error
	onPlan   func()
}

func (f *fakePlanner) Plan(ctx context.Context, script, styleName, stylePrompt string) ([]models.PlannedSegment, error) {
	if f.onPlan != nil {
		f.onPlan()
	}
	return f.segments, f.err
}

// fakeMedia gives every segment an image and a measured duration of
// len(text)/10 seconds.
type fakeMedia struct {
	failImage map[int]bool
	err       error
	started   chan struct{}
	release   chan struct{}
	requests  []media.Request
}

func (f *fakeMedia) Generate(ctx context.Context, req media.Request) (*models.MediaGenerationResult, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}

	res := &models.MediaGenerationResult{
		ImageResults: make([]models.ImageOutcome, len(req.Segments)),
		AudioResults: make([]models.AudioOutcome, len(req.Segments)),
	}
	for i, seg := range req.Segments {
		res.ImageResults[i] = models.ImageOutcome{Index: i, Prompt: seg.ImagePrompt}
		if f.failImage[i] {
			res.ImageResults[i].Error = "boom"
		} else {
			res.ImageResults[i].Success = true
			res.ImageResults[i].ImageURL = fmt.Sprintf("https://cdn.test/%d.jpg", i)
		}
		res.AudioResults[i] = models.AudioOutcome{
			Index:     i,
			SegmentID: req.SegmentIDs[i],
			AudioURL:  fmt.Sprintf("https://cdn.test/%d.mp3", i),
			Duration:  float64(len(seg.Text)) / 10,
		}
	}
	return res, nil
}

var errProvider = errors.New("provider exploded")

// timedMedia attaches word timings to segment 0 only.
type timedMedia struct{ fakeMedia }

func (f *timedMedia) Generate(ctx context.Context, req media.Request) (*models.MediaGenerationResult, error) {
	res, err := f.fakeMedia.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	res.AudioResults[0].WordTimings = captions.Batch([]captions.Word{
		{Text: "Hello", Start: 0, End: 0.4},
		{Text: "world.", Start: 0.5, End: 0.9},
	}, captions.DefaultBatchSize)
	return res, nil
}

// addFinished stores a project in status with the given segments, each
// lasting len(text)/10 seconds.
func (s *memStore) addFinished(status models.ProjectStatus, texts ...string) *models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Project{ID: uuid.New(), UserID: uuid.New(), Status: status, Voice: "echo", StyleID: "anime"}
	for i, text := range texts {
		seg := &models.Segment{
			ID:          uuid.New(),
			ProjectID:   p.ID,
			Order:       i,
			Text:        text,
			ImagePrompt: fmt.Sprintf("prompt-%d", i),
			Duration:    float64(len(text)) / 10,
		}
		s.segments[seg.ID] = seg
		p.Segments = append(p.Segments, *seg)
		p.Duration += seg.Duration
	}
	s.projects[p.ID] = p
	cp := *p
	cp.Segments = append([]models.Segment(nil), p.Segments...)
	return &cp
}

func (s *memStore) segment(id uuid.UUID) models.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.segments[id]
}

func (s *memStore) UpdateSegmentPrompt(ctx context.Context, id uuid.UUID, prompt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg, ok := s.segments[id]
	if !ok {
		return models.ErrNotFound
	}
	seg.ImagePrompt = prompt
	return nil
}

func (s *memStore) UpdateSegmentText(ctx context.Context, id uuid.UUID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg, ok := s.segments[id]
	if !ok {
		return models.ErrNotFound
	}
	seg.Text = text
	return nil
}

func (s *memStore) RefreshProjectDuration(ctx context.Context, projectID uuid.UUID) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok {
		return 0, models.ErrNotFound
	}
	var total float64
	for _, seg := range s.segments {
		if seg.ProjectID == projectID {
			total += seg.Duration
		}
	}
	p.Duration = total
	return total, nil
}

// fakeSegmentMedia regenerates one segment the way fakeMedia generates all of
// them, with one caption batch per audio.
type fakeSegmentMedia struct {
	imageErr  string
	audioErr  error
	imageReqs []media.Request
	audioReqs []media.Request
	lastIndex int
}

func (f *fakeSegmentMedia) GenerateSegmentImage(ctx context.Context, req media.Request, i int) (models.ImageOutcome, error) {
	f.imageReqs = append(f.imageReqs, req)
	f.lastIndex = i
	if f.imageErr != "" {
		return models.ImageOutcome{Index: i, Error: f.imageErr}, nil
	}
	return models.ImageOutcome{
		Index:    i,
		Prompt:   req.Segments[i].ImagePrompt,
		Success:  true,
		ImageURL: fmt.Sprintf("https://cdn.test/%d-v2.jpg", i),
	}, nil
}

func (f *fakeSegmentMedia) GenerateSegmentAudio(ctx context.Context, req media.Request, i int) (*models.AudioOutcome, error) {
	f.audioReqs = append(f.audioReqs, req)
	f.lastIndex = i
	if f.audioErr != nil {
		return nil, f.audioErr
	}
	text := req.Segments[i].Text
	duration := float64(len(text)) / 10
	return &models.AudioOutcome{
		Index:     i,
		SegmentID: req.SegmentIDs[i],
		AudioURL:  fmt.Sprintf("https://cdn.test/%d-v2.mp3", i),
		Duration:  duration,
		WordTimings: []captions.WordBatch{
			{Text: text, Start: 0, End: duration, Words: []captions.Word{{Text: text, Start: 0, End: duration}}},
		},
	}, nil
}
