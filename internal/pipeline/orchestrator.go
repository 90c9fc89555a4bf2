package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"shorts-backend/internal/config"
	"shorts-backend/internal/media"
	"shorts-backend/internal/models"
	"shorts-backend/internal/planner"
)

var (
	ErrInvalidTransition = models.ErrInvalidTransition
	ErrUnknownVoice      = errors.New("unknown voice")
)

// Store is the project and segment persistence the pipeline writes through.
// Status changes are compare-and-set; segment updates touch one field set each.
type Store interface {
	BeginGeneration(ctx context.Context, projectID uuid.UUID, script, styleID, voice, imageModel string) error
	CreateSegmentsBatch(ctx context.Context, projectID uuid.UUID, planned []models.PlannedSegment, durations []float64) ([]models.Segment, error)
	UpdateSegmentImage(ctx context.Context, segmentID uuid.UUID, imageURL string) error
	UpdateSegmentAudio(ctx context.Context, segmentID uuid.UUID, audioURL string, duration float64, wordTimings json.RawMessage) error
	CompleteProject(ctx context.Context, projectID uuid.UUID, duration float64) error
	FailProject(ctx context.Context, projectID uuid.UUID, errorMsg string) error
}

type Planner interface {
	Plan(ctx context.Context, script, styleName, stylePrompt string) ([]models.PlannedSegment, error)
}

type MediaGenerator interface {
	Generate(ctx context.Context, req media.Request) (*models.MediaGenerationResult, error)
}

type SubmitParams struct {
	Script     string
	StyleID    string
	Voice      string
	ImageModel string
}

// Job is one resolved generation run.
type Job struct {
	ProjectID  uuid.UUID
	UserID     uuid.UUID
	Script     string
	Style      config.ImageStyle
	Voice      string
	ImageModel string
}

type Orchestrator struct {
	store   Store
	planner Planner
	media   MediaGenerator
	catalog *config.Catalog
	logger  zerolog.Logger
	wg      sync.WaitGroup

	mu      sync.Mutex
	running map[uuid.UUID]struct{}
}

func NewOrchestrator(store Store, planner Planner, media MediaGenerator, catalog *config.Catalog, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store:   store,
		planner: planner,
		media:   media,
		catalog: catalog,
		logger:  logger.With().Str("component", "pipeline").Logger(),
		running: map[uuid.UUID]struct{}{},
	}
}

// Submit validates the request and moves the project to generating before
// returning. Generation then runs in the background and outlives ctx.
func (o *Orchestrator) Submit(ctx context.Context, project *models.Project, params SubmitParams) (*Job, error) {
	job, err := o.resolve(project, params)
	if err != nil {
		return nil, err
	}

	if !project.Status.CanTransitionTo(models.StatusGenerating) {
		return nil, fmt.Errorf("%w: project is %s", ErrInvalidTransition, project.Status)
	}
	if err := o.store.BeginGeneration(ctx, project.ID, job.Script, job.Style.ID, job.Voice, job.ImageModel); err != nil {
		return nil, err
	}
	project.Status = models.StatusGenerating

	o.logger.Info().
		Str("project_id", project.ID.String()).
		Str("style", job.Style.ID).
		Str("voice", job.Voice).
		Msg("generation submitted")

	runCtx := context.WithoutCancel(ctx)
	o.track(job.ProjectID)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.untrack(job.ProjectID)
		defer func() {
			if r := recover(); r != nil {
				o.fail(runCtx, job.ProjectID, fmt.Errorf("generation panicked: %v", r))
			}
		}()
		_ = o.Run(runCtx, *job)
	}()

	return job, nil
}

// Wait blocks until every background run started by Submit has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// WaitContext is Wait bounded by ctx. It returns ctx's error when runs are
// still in flight at the deadline; Running lists them.
func (o *Orchestrator) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running returns the projects whose background runs have not finished.
func (o *Orchestrator) Running() []uuid.UUID {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(o.running))
	for id := range o.running {
		ids = append(ids, id)
	}
	return ids
}

func (o *Orchestrator) track(id uuid.UUID) {
	o.mu.Lock()
	o.running[id] = struct{}{}
	o.mu.Unlock()
}

func (o *Orchestrator) untrack(id uuid.UUID) {
	o.mu.Lock()
	delete(o.running, id)
	o.mu.Unlock()
}

func (o *Orchestrator) resolve(project *models.Project, params SubmitParams) (*Job, error) {
	script := strings.TrimSpace(params.Script)
	if script == "" {
		return nil, planner.ErrEmptyScript
	}

	voice := firstNonEmpty(params.Voice, project.Voice, o.catalog.DefaultVoice)
	if _, ok := o.catalog.Voice(voice); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVoice, voice)
	}

	style := o.catalog.StyleOrDefault(firstNonEmpty(params.StyleID, project.StyleID))

	return &Job{
		ProjectID:  project.ID,
		UserID:     project.UserID,
		Script:     script,
		Style:      style,
		Voice:      voice,
		ImageModel: firstNonEmpty(params.ImageModel, project.ImageModel),
	}, nil
}

// Run executes one generation and leaves the project completed or failed.
// If marking the project failed also fails, that error is logged and the
// project stays generating.
func (o *Orchestrator) Run(ctx context.Context, job Job) error {
	start := time.Now()
	logger := o.logger.With().Str("project_id", job.ProjectID.String()).Logger()

	duration, err := o.generate(ctx, job)
	if err != nil {
		logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("generation failed")
		o.fail(ctx, job.ProjectID, err)
		return err
	}

	logger.Info().Float64("duration", duration).Dur("elapsed", time.Since(start)).Msg("generation completed")
	return nil
}

func (o *Orchestrator) generate(ctx context.Context, job Job) (float64, error) {
	planned, err := o.planner.Plan(ctx, job.Script, job.Style.Name, job.Style.SystemPrompt)
	if err != nil {
		return 0, fmt.Errorf("planning failed: %w", err)
	}

	estimates := make([]float64, len(planned))
	for i, p := range planned {
		estimates[i] = media.EstimateDuration(p.Text)
	}
	segments, err := o.store.CreateSegmentsBatch(ctx, job.ProjectID, planned, estimates)
	if err != nil {
		return 0, fmt.Errorf("failed to create segments: %w", err)
	}

	ids := make([]uuid.UUID, len(segments))
	for i, s := range segments {
		ids[i] = s.ID
	}

	result, err := o.media.Generate(ctx, media.Request{
		UserID:     job.UserID,
		ProjectID:  job.ProjectID,
		Segments:   planned,
		SegmentIDs: ids,
		Voice:      job.Voice,
		Style:      job.Style,
		ImageModel: job.ImageModel,
	})
	if err != nil {
		return 0, fmt.Errorf("media generation failed: %w", err)
	}

	if err := o.reconcile(ctx, ids, result); err != nil {
		return 0, err
	}

	var total float64
	for _, a := range result.AudioResults {
		total += a.Duration
	}

	if err := o.store.CompleteProject(ctx, job.ProjectID, total); err != nil {
		return 0, fmt.Errorf("failed to complete project: %w", err)
	}
	return total, nil
}

// reconcile writes each outcome to its own segment. Image and audio go through
// separate updates so neither can overwrite the other.
func (o *Orchestrator) reconcile(ctx context.Context, ids []uuid.UUID, result *models.MediaGenerationResult) error {
	var g errgroup.Group
	for i, id := range ids {
		if img := result.ImageResults[i]; img.Success {
			g.Go(func() error {
				if err := o.store.UpdateSegmentImage(ctx, id, img.ImageURL); err != nil {
					return fmt.Errorf("failed to update segment %d image: %w", i, err)
				}
				return nil
			})
		}

		audio := result.AudioResults[i]
		g.Go(func() error {
			timings, err := encodeTimings(audio.WordTimings)
			if err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
			if err := o.store.UpdateSegmentAudio(ctx, id, audio.AudioURL, audio.Duration, timings); err != nil {
				return fmt.Errorf("failed to update segment %d audio: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (o *Orchestrator) fail(ctx context.Context, projectID uuid.UUID, cause error) {
	if err := o.store.FailProject(ctx, projectID, cause.Error()); err != nil {
		o.logger.Error().Err(err).Str("project_id", projectID.String()).Msg("failed to mark project failed")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
