package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"shorts-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// DB exposes the pool for the migrator.
func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

const projectColumns = `id, user_id, title, script, style_id, voice, image_model, status, duration, error_message, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*models.Project, error) {
	var p models.Project
	var status string
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Script, &p.StyleID, &p.Voice, &p.ImageModel,
		&status, &p.Duration, &p.ErrorMessage, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = models.ProjectStatus(status)
	return &p, nil
}

func (d *DatabaseClient) CreateProject(ctx context.Context, userID uuid.UUID, title, styleID, voice string) (*models.Project, error) {
	row := d.db.QueryRowContext(ctx, `
		INSERT INTO projects (id, user_id, title, style_id, voice, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+projectColumns,
		uuid.New(), userID, title, styleID, voice, string(models.StatusDraft))

	p, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// GetProject returns the project with its segments in order.
func (d *DatabaseClient) GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = $1 AND user_id = $2
	`, projectID, userID)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get project %s: %w", projectID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	p.Segments, err = d.GetSegments(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (d *DatabaseClient) ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// DeleteProject removes a project that is not generating. Segments and file
// rows go with it through ON DELETE CASCADE.
func (d *DatabaseClient) DeleteProject(ctx context.Context, projectID, userID uuid.UUID) error {
	res, err := d.db.ExecContext(ctx, `
		DELETE FROM projects
		WHERE id = $1 AND user_id = $2 AND status <> $3
	`, projectID, userID, string(models.StatusGenerating))
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return expectOneRow(res, func() error {
		return fmt.Errorf("project %s not found or generating: %w", projectID, models.ErrNotFound)
	})
}

// BeginGeneration moves a draft project to generating and stores the
// submission parameters in the same statement.
func (d *DatabaseClient) BeginGeneration(ctx context.Context, projectID uuid.UUID, script, styleID, voice, imageModel string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE projects
		SET status = $1, script = $2, style_id = $3, voice = $4, image_model = $5, error_message = NULL
		WHERE id = $6 AND status = $7
	`, string(models.StatusGenerating), script, styleID, voice, imageModel, projectID, string(models.StatusDraft))
	if err != nil {
		return fmt.Errorf("failed to start generation: %w", err)
	}
	return expectOneRow(res, func() error {
		return d.transitionError(ctx, projectID, models.StatusDraft, models.StatusGenerating)
	})
}

// CompleteProject and FailProject are compare-and-set updates: they only
// apply while the project is still generating.
func (d *DatabaseClient) CompleteProject(ctx context.Context, projectID uuid.UUID, duration float64) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE projects SET status = $1, duration = $2 WHERE id = $3 AND status = $4
	`, string(models.StatusCompleted), duration, projectID, string(models.StatusGenerating))
	if err != nil {
		return fmt.Errorf("failed to complete project: %w", err)
	}
	return expectOneRow(res, func() error {
		return d.transitionError(ctx, projectID, models.StatusGenerating, models.StatusCompleted)
	})
}

func (d *DatabaseClient) FailProject(ctx context.Context, projectID uuid.UUID, errorMsg string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE projects SET status = $1, error_message = $2 WHERE id = $3 AND status = $4
	`, string(models.StatusFailed), errorMsg, projectID, string(models.StatusGenerating))
	if err != nil {
		return fmt.Errorf("failed to mark project failed: %w", err)
	}
	return expectOneRow(res, func() error {
		return d.transitionError(ctx, projectID, models.StatusGenerating, models.StatusFailed)
	})
}

// transitionError explains why a compare-and-set matched no row.
func (d *DatabaseClient) transitionError(ctx context.Context, projectID uuid.UUID, from, to models.ProjectStatus) error {
	var current string
	err := d.db.QueryRowContext(ctx, `SELECT status FROM projects WHERE id = $1`, projectID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("project %s: %w", projectID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
	}
	return fmt.Errorf("%w: project is %s, expected %s", models.ErrInvalidTransition, current, from)
}

// CreateSegmentsBatch inserts all planned segments in one transaction and
// returns them with their ids, in order.
func (d *DatabaseClient) CreateSegmentsBatch(ctx context.Context, projectID uuid.UUID, planned []models.PlannedSegment, durations []float64) ([]models.Segment, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (id, project_id, segment_order, text, image_prompt, duration)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare segment insert: %w", err)
	}
	defer stmt.Close()

	segments := make([]models.Segment, len(planned))
	for i, p := range planned {
		seg := models.Segment{
			ID:          uuid.New(),
			ProjectID:   projectID,
			Order:       p.Order,
			Text:        p.Text,
			ImagePrompt: p.ImagePrompt,
		}
		if i < len(durations) {
			seg.Duration = durations[i]
		}
		if err := stmt.QueryRowContext(ctx, seg.ID, projectID, seg.Order, seg.Text, seg.ImagePrompt, seg.Duration).
			Scan(&seg.CreatedAt, &seg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to create segment %d: %w", p.Order, err)
		}
		segments[i] = seg
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit segments: %w", err)
	}
	return segments, nil
}

func (d *DatabaseClient) GetSegments(ctx context.Context, projectID uuid.UUID) ([]models.Segment, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, project_id, segment_order, text, image_prompt, image_url, audio_url, duration, word_timings, created_at, updated_at
		FROM segments
		WHERE project_id = $1
		ORDER BY segment_order
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get segments: %w", err)
	}
	defer rows.Close()

	var segments []models.Segment
	for rows.Next() {
		var s models.Segment
		var timings []byte
		if err := rows.Scan(
			&s.ID, &s.ProjectID, &s.Order, &s.Text, &s.ImagePrompt, &s.ImageURL, &s.AudioURL,
			&s.Duration, &timings, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		s.WordTimings = timings
		segments = append(segments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get segments: %w", err)
	}
	return segments, nil
}

// UpdateSegmentImage touches only the image column of one segment.
func (d *DatabaseClient) UpdateSegmentImage(ctx context.Context, segmentID uuid.UUID, imageURL string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE segments SET image_url = $1 WHERE id = $2
	`, imageURL, segmentID)
	if err != nil {
		return fmt.Errorf("failed to update segment image: %w", err)
	}
	return expectOneRow(res, func() error {
		return fmt.Errorf("segment %s: %w", segmentID, models.ErrNotFound)
	})
}

// UpdateSegmentAudio touches only the audio columns of one segment. A nil
// wordTimings stores NULL.
func (d *DatabaseClient) UpdateSegmentAudio(ctx context.Context, segmentID uuid.UUID, audioURL string, duration float64, wordTimings json.RawMessage) error {
	var timings any
	if len(wordTimings) > 0 {
		timings = []byte(wordTimings)
	}
	res, err := d.db.ExecContext(ctx, `
		UPDATE segments SET audio_url = $1, duration = $2, word_timings = $3 WHERE id = $4
	`, audioURL, duration, timings, segmentID)
	if err != nil {
		return fmt.Errorf("failed to update segment audio: %w", err)
	}
	return expectOneRow(res, func() error {
		return fmt.Errorf("segment %s: %w", segmentID, models.ErrNotFound)
	})
}

// UpdateSegmentPrompt touches only the image prompt of one segment.
func (d *DatabaseClient) UpdateSegmentPrompt(ctx context.Context, segmentID uuid.UUID, prompt string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE segments SET image_prompt = $1 WHERE id = $2
	`, prompt, segmentID)
	if err != nil {
		return fmt.Errorf("failed to update segment prompt: %w", err)
	}
	return expectOneRow(res, func() error {
		return fmt.Errorf("segment %s: %w", segmentID, models.ErrNotFound)
	})
}

// UpdateSegmentText touches only the narration text of one segment.
func (d *DatabaseClient) UpdateSegmentText(ctx context.Context, segmentID uuid.UUID, text string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE segments SET text = $1 WHERE id = $2
	`, text, segmentID)
	if err != nil {
		return fmt.Errorf("failed to update segment text: %w", err)
	}
	return expectOneRow(res, func() error {
		return fmt.Errorf("segment %s: %w", segmentID, models.ErrNotFound)
	})
}

// RefreshProjectDuration sets the project duration to the sum of its segment
// durations and returns it.
func (d *DatabaseClient) RefreshProjectDuration(ctx context.Context, projectID uuid.UUID) (float64, error) {
	var duration float64
	err := d.db.QueryRowContext(ctx, `
		UPDATE projects
		SET duration = (SELECT COALESCE(SUM(duration), 0) FROM segments WHERE project_id = $1)
		WHERE id = $1
		RETURNING duration
	`, projectID).Scan(&duration)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("project %s: %w", projectID, models.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to refresh project duration: %w", err)
	}
	return duration, nil
}

func (d *DatabaseClient) CreateProjectFile(ctx context.Context, file *models.ProjectFile) error {
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	metadata := file.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage("{}")
	}
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO project_files (id, project_id, segment_id, user_id, file_type, filename, storage_path, storage_url, file_size, mime_type, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`, file.ID, file.ProjectID, file.SegmentID, file.UserID, file.FileType, file.Filename, file.StoragePath,
		file.StorageURL, file.FileSize, file.MimeType, []byte(metadata)).Scan(&file.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project file: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListProjectFiles(ctx context.Context, projectID uuid.UUID) ([]models.ProjectFile, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, project_id, segment_id, user_id, file_type, filename, storage_path, storage_url, file_size, mime_type, metadata, created_at
		FROM project_files
		WHERE project_id = $1
		ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}
	defer rows.Close()

	var files []models.ProjectFile
	for rows.Next() {
		var f models.ProjectFile
		var metadata []byte
		if err := rows.Scan(
			&f.ID, &f.ProjectID, &f.SegmentID, &f.UserID, &f.FileType, &f.Filename, &f.StoragePath,
			&f.StorageURL, &f.FileSize, &f.MimeType, &metadata, &f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project file: %w", err)
		}
		f.Metadata = metadata
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}
	return files, nil
}

// expectOneRow calls notMatched to build the error when no row was affected.
func expectOneRow(res sql.Result, notMatched func() error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notMatched()
	}
	return nil
}
