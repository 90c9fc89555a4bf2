package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"shorts-backend/internal/captions"
	"shorts-backend/internal/config"
	"shorts-backend/internal/models"
)

var (
	ErrSegmentMismatch = errors.New("segment and segment id counts differ")
	ErrSegmentIndex    = errors.New("segment index out of range")
)

type ImageBackend interface {
	GenerateImage(ctx context.Context, req models.ImageRequest) (*models.GeneratedImage, error)
}

type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type SpeechGenerator interface {
	GenerateSpeech(ctx context.Context, text, voice string) ([]byte, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (*models.Transcription, error)
}

// ArtifactStore persists generated files and their metadata records.
type ArtifactStore interface {
	Upload(ctx context.Context, upload models.ArtifactUpload) (*models.Artifact, error)
	RecordFile(ctx context.Context, file *models.ProjectFile) error
}

// Backends are the collaborators a Coordinator calls out to.
// OpenAIImages or FalImages may be nil when that provider is not configured.
type Backends struct {
	OpenAIImages ImageBackend
	FalImages    ImageBackend
	Downloader   Downloader
	Speech       SpeechGenerator
	Transcriber  Transcriber
	Artifacts    ArtifactStore
}

type Options struct {
	// MaxConcurrency caps in-flight tasks; 0 means unbounded.
	MaxConcurrency int
	// RateLimitRPM caps provider calls per minute; 0 disables the limit.
	RateLimitRPM int
	BatchSize    int
}

type Coordinator struct {
	backends       Backends
	maxConcurrency int
	batchSize      int
	limiter        *rate.Limiter
	logger         zerolog.Logger
}

type Request struct {
	UserID     uuid.UUID
	ProjectID  uuid.UUID
	Segments   []models.PlannedSegment
	SegmentIDs []uuid.UUID
	Voice      string
	Style      config.ImageStyle
	ImageModel string
}

func NewCoordinator(backends Backends, opts Options, logger zerolog.Logger) *Coordinator {
	c := &Coordinator{
		backends:       backends,
		maxConcurrency: opts.MaxConcurrency,
		batchSize:      opts.BatchSize,
		logger:         logger.With().Str("component", "media").Logger(),
	}
	if c.batchSize < 1 {
		c.batchSize = captions.DefaultBatchSize
	}
	if opts.RateLimitRPM > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(opts.RateLimitRPM)/60.0), 1)
	}
	return c
}

// Generate runs an image task and an audio task for every segment concurrently
// and waits for all of them. Image failures are recorded in the result; the
// first audio failure is returned as the error once every task has settled.
func (c *Coordinator) Generate(ctx context.Context, req Request) (*models.MediaGenerationResult, error) {
	if len(req.Segments) != len(req.SegmentIDs) {
		return nil, fmt.Errorf("%w: %d segments, %d ids", ErrSegmentMismatch, len(req.Segments), len(req.SegmentIDs))
	}

	start := time.Now()
	result := &models.MediaGenerationResult{
		ImageResults: make([]models.ImageOutcome, len(req.Segments)),
		AudioResults: make([]models.AudioOutcome, len(req.Segments)),
	}

	var g errgroup.Group
	if c.maxConcurrency > 0 {
		g.SetLimit(c.maxConcurrency)
	}

	for i := range req.Segments {
		g.Go(func() error {
			result.ImageResults[i] = c.generateImage(ctx, req, i)
			return nil
		})
		g.Go(func() error {
			outcome, err := c.generateAudio(ctx, req, i)
			if err != nil {
				return err
			}
			result.AudioResults[i] = *outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.logger.Error().Err(err).Str("project_id", req.ProjectID.String()).Msg("media generation failed")
		return nil, err
	}

	failed := result.FailedImages()
	event := c.logger.Info()
	if failed > 0 {
		event = c.logger.Warn()
	}
	event.Str("project_id", req.ProjectID.String()).
		Int("segments", len(req.Segments)).
		Int("failed_images", failed).
		Dur("elapsed", time.Since(start)).
		Msg("media generation finished")

	return result, nil
}

// GenerateSegmentImage renders and stores the image of segment i alone. The
// outcome reports provider failures the same way Generate does.
func (c *Coordinator) GenerateSegmentImage(ctx context.Context, req Request, i int) (models.ImageOutcome, error) {
	if err := checkIndex(req, i); err != nil {
		return models.ImageOutcome{}, err
	}
	return c.generateImage(ctx, req, i), nil
}

// GenerateSegmentAudio synthesizes, times and stores the audio of segment i alone.
func (c *Coordinator) GenerateSegmentAudio(ctx context.Context, req Request, i int) (*models.AudioOutcome, error) {
	if err := checkIndex(req, i); err != nil {
		return nil, err
	}
	return c.generateAudio(ctx, req, i)
}

func checkIndex(req Request, i int) error {
	if len(req.Segments) != len(req.SegmentIDs) {
		return fmt.Errorf("%w: %d segments, %d ids", ErrSegmentMismatch, len(req.Segments), len(req.SegmentIDs))
	}
	if i < 0 || i >= len(req.Segments) {
		return fmt.Errorf("%w: %d of %d", ErrSegmentIndex, i, len(req.Segments))
	}
	return nil
}

func (c *Coordinator) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Coordinator) imageBackend(model string) ImageBackend {
	if IsOpenAIImageModel(model) {
		return c.backends.OpenAIImages
	}
	return c.backends.FalImages
}

// generateImage renders and stores one segment image. When the backend hands
// back a hosted URL and copying it into storage fails, the outcome still
// succeeds with the provider URL and no file record is written.
func (c *Coordinator) generateImage(ctx context.Context, req Request, i int) models.ImageOutcome {
	prompt := req.Segments[i].ImagePrompt
	if req.Style.SystemPrompt != "" {
		prompt = req.Style.SystemPrompt + ". " + prompt
	}
	model := ResolveModel(req.ImageModel, req.Style.Model)

	outcome := models.ImageOutcome{Index: i, Prompt: prompt}
	logger := c.logger.With().Int("segment", i).Str("model", model).Logger()

	img, err := c.renderImage(ctx, model, models.ImageRequest{
		Prompt: prompt,
		Style:  req.Style.Name,
		Size:   ImageSize,
		Model:  model,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("image generation failed")
		outcome.Error = err.Error()
		return outcome
	}

	stored, err := c.storeImage(ctx, req, i, img)
	switch {
	case err == nil:
		c.recordFile(ctx, req, i, models.FileTypeImage, stored.contentType, stored.artifact, stored.size, map[string]any{
			"prompt": prompt,
			"model":  model,
		})
		outcome.ImageURL = stored.artifact.URL
	case img.URL != "":
		logger.Warn().Err(err).Msg("image upload failed, keeping provider url")
		outcome.ImageURL = img.URL
	default:
		logger.Warn().Err(err).Msg("image upload failed")
		outcome.Error = fmt.Sprintf("failed to store image: %v", err)
		return outcome
	}

	outcome.Success = true
	return outcome
}

// renderImage calls the routed backend.
func (c *Coordinator) renderImage(ctx context.Context, model string, req models.ImageRequest) (*models.GeneratedImage, error) {
	backend := c.imageBackend(model)
	if backend == nil {
		return nil, fmt.Errorf("no image backend configured for model %s", model)
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	img, err := backend.GenerateImage(ctx, req)
	if err != nil {
		return nil, err
	}
	if img == nil || (len(img.Data) == 0 && img.URL == "") {
		return nil, fmt.Errorf("no image generated")
	}
	return img, nil
}

type storedImage struct {
	artifact    *models.Artifact
	contentType string
	size        int
}

// storeImage copies the image into artifact storage, fetching the bytes first
// when the backend only returned a URL.
func (c *Coordinator) storeImage(ctx context.Context, req Request, i int, img *models.GeneratedImage) (*storedImage, error) {
	data := img.Data
	if len(data) == 0 {
		if c.backends.Downloader == nil {
			return nil, fmt.Errorf("no downloader configured for %s", img.URL)
		}
		var err error
		data, err = c.backends.Downloader.Download(ctx, img.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to download image: %w", err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("downloaded image is empty")
		}
	}

	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	artifact, err := c.backends.Artifacts.Upload(ctx, models.ArtifactUpload{
		UserID:      req.UserID,
		ProjectID:   req.ProjectID,
		SegmentID:   req.SegmentIDs[i],
		Index:       i,
		FileType:    models.FileTypeImage,
		Ext:         imageExt(contentType),
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return nil, err
	}
	return &storedImage{artifact: artifact, contentType: contentType, size: len(data)}, nil
}

func (c *Coordinator) generateAudio(ctx context.Context, req Request, i int) (*models.AudioOutcome, error) {
	seg := req.Segments[i]
	logger := c.logger.With().Int("segment", i).Logger()

	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("segment %d: %w", i, err)
	}
	audio, err := c.backends.Speech.GenerateSpeech(ctx, seg.Text, req.Voice)
	if err != nil {
		return nil, fmt.Errorf("segment %d: failed to generate speech: %w", i, err)
	}

	outcome := &models.AudioOutcome{Index: i, SegmentID: req.SegmentIDs[i]}
	outcome.Duration, outcome.WordTimings = c.timeAudio(ctx, logger, seg.Text, audio)

	artifact, err := c.backends.Artifacts.Upload(ctx, models.ArtifactUpload{
		UserID:      req.UserID,
		ProjectID:   req.ProjectID,
		SegmentID:   req.SegmentIDs[i],
		Index:       i,
		FileType:    models.FileTypeAudio,
		Ext:         "mp3",
		ContentType: "audio/mpeg",
		Data:        audio,
	})
	if err != nil {
		return nil, fmt.Errorf("segment %d: failed to store audio: %w", i, err)
	}
	outcome.AudioURL = artifact.URL

	c.recordFile(ctx, req, i, models.FileTypeAudio, "audio/mpeg", artifact, len(audio), map[string]any{
		"voice":         req.Voice,
		"duration":      outcome.Duration,
		"has_timings":   len(outcome.WordTimings) > 0,
		"caption_words": len(captions.Flatten(outcome.WordTimings)),
	})

	return outcome, nil
}

// timeAudio transcribes audio into caption batches. When transcription fails
// the duration is estimated from text and no timings are returned.
func (c *Coordinator) timeAudio(ctx context.Context, logger zerolog.Logger, text string, audio []byte) (float64, []captions.WordBatch) {
	var tr *models.Transcription
	err := c.wait(ctx)
	if err == nil {
		tr, err = c.backends.Transcriber.Transcribe(ctx, audio)
	}
	if err != nil || tr == nil {
		logger.Warn().Err(err).Msg("transcription failed, estimating duration")
		return EstimateDuration(text), nil
	}

	batches := captions.Batch(tr.CaptionWords(), c.batchSize)

	duration := tr.Duration
	if duration <= 0 && len(batches) > 0 {
		duration = batches[len(batches)-1].End
	}
	if duration <= 0 {
		duration = EstimateDuration(text)
	}
	if len(batches) == 0 {
		batches = nil
	}
	return duration, batches
}

// recordFile writes the metadata row for an uploaded artifact. Failures are
// logged only; the artifact itself is already stored.
func (c *Coordinator) recordFile(ctx context.Context, req Request, i int, fileType, contentType string, artifact *models.Artifact, size int, metadata map[string]any) {
	metadata["generated_at"] = time.Now().UTC().Format(time.RFC3339)

	file := &models.ProjectFile{
		ProjectID:   req.ProjectID,
		SegmentID:   uuid.NullUUID{UUID: req.SegmentIDs[i], Valid: true},
		UserID:      req.UserID,
		FileType:    fileType,
		Filename:    artifact.Key[strings.LastIndex(artifact.Key, "/")+1:],
		StoragePath: artifact.Key,
		StorageURL:  artifact.URL,
		MimeType:    contentType,
	}
	file.FileSize.Int64, file.FileSize.Valid = int64(size), true
	file.Metadata = encodeMetadata(metadata)

	if err := c.backends.Artifacts.RecordFile(ctx, file); err != nil {
		c.logger.Warn().Err(err).Int("segment", i).Str("file_type", fileType).Msg("failed to record file")
	}
}

func imageExt(contentType string) string {
	switch contentType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	}
	return "jpg"
}
