package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"shorts-backend/internal/models"
)

const (
	// MaxChunks caps the number of segments a script is split into.
	MaxChunks = 10

	SegmentModel       = "gpt-4o-mini"
	SegmentTemperature = 1.0
	PromptModel        = "gpt-4o-2024-08-06"
	PromptTemperature  = 0.8

	DefaultStyleName = "dark and eerie"
)

var (
	ErrEmptyScript         = errors.New("script is empty")
	ErrMalformedResponse   = errors.New("malformed text generation response")
	ErrTooManyChunks       = errors.New("too many chunks")
	ErrNotVerbatim         = errors.New("chunk does not reproduce the script verbatim")
	ErrPromptCountMismatch = errors.New("prompt count does not match chunk count")
)

// TextGenerator runs a JSON-mode completion and returns the raw JSON text.
type TextGenerator interface {
	CompleteJSON(ctx context.Context, model, system, user string, temperature float64) (string, error)
}

type Planner struct {
	llm    TextGenerator
	logger zerolog.Logger
}

// PromptRequest describes one visual-prompt pass. PriorPrompts are prompts
// already used earlier in the sequence and are sent as continuity context.
type PromptRequest struct {
	Chunks       []string
	StyleName    string
	StylePrompt  string
	PriorPrompts []string
}

func NewPlanner(llm TextGenerator, logger zerolog.Logger) *Planner {
	return &Planner{
		llm:    llm,
		logger: logger.With().Str("component", "planner").Logger(),
	}
}

// Plan splits script into narration chunks and pairs each with an image prompt.
func (p *Planner) Plan(ctx context.Context, script, styleName, stylePrompt string) ([]models.PlannedSegment, error) {
	chunks, err := p.BreakScript(ctx, script)
	if err != nil {
		return nil, err
	}

	prompts, err := p.GeneratePrompts(ctx, PromptRequest{
		Chunks:      chunks,
		StyleName:   styleName,
		StylePrompt: stylePrompt,
	})
	if err != nil {
		return nil, err
	}

	segments := make([]models.PlannedSegment, len(chunks))
	for i := range chunks {
		segments[i] = models.PlannedSegment{
			Order:       i,
			Text:        chunks[i],
			ImagePrompt: prompts[i],
		}
	}
	return segments, nil
}

// BreakScript asks the text generator to split script into verbatim chunks.
func (p *Planner) BreakScript(ctx context.Context, script string) ([]string, error) {
	if strings.TrimSpace(script) == "" {
		return nil, ErrEmptyScript
	}

	p.logger.Debug().Int("script_length", len(script)).Msg("segmenting script")

	content, err := p.llm.CompleteJSON(ctx, SegmentModel, segmentInstructions(), script, SegmentTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to segment script: %w", err)
	}

	var result struct {
		Chunks []string `json:"chunks"`
	}
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("%w: chunks: %v", ErrMalformedResponse, err)
	}
	if len(result.Chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks returned", ErrMalformedResponse)
	}
	if len(result.Chunks) > MaxChunks {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooManyChunks, len(result.Chunks), MaxChunks)
	}

	chunks := make([]string, len(result.Chunks))
	for i, c := range result.Chunks {
		chunks[i] = strings.TrimSpace(c)
		if chunks[i] == "" {
			return nil, fmt.Errorf("%w: chunk %d is blank", ErrMalformedResponse, i)
		}
	}

	if err := checkVerbatim(script, chunks); err != nil {
		return nil, err
	}

	p.logger.Info().Int("chunks", len(chunks)).Msg("script segmented")
	return chunks, nil
}

// GeneratePrompts produces exactly one image prompt per chunk, in order.
func (p *Planner) GeneratePrompts(ctx context.Context, req PromptRequest) ([]string, error) {
	chunksJSON, err := json.Marshal(req.Chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chunks: %w", err)
	}

	content, err := p.llm.CompleteJSON(ctx, PromptModel,
		promptInstructions(req.StyleName, req.StylePrompt),
		promptUserContent(string(chunksJSON), req.PriorPrompts),
		PromptTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image prompts: %w", err)
	}

	prompts, err := parsePrompts(content)
	if err != nil {
		return nil, err
	}
	if len(prompts) != len(req.Chunks) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrPromptCountMismatch, len(req.Chunks), len(prompts))
	}

	p.logger.Info().Int("prompts", len(prompts)).Msg("image prompts generated")
	return prompts, nil
}

// parsePrompts accepts prompt entries that are plain strings or structured
// objects; objects are kept as compact JSON.
func parsePrompts(content string) ([]string, error) {
	var result struct {
		Prompts []json.RawMessage `json:"prompts"`
	}
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("%w: prompts: %v", ErrMalformedResponse, err)
	}
	if result.Prompts == nil {
		return nil, fmt.Errorf("%w: no prompts returned", ErrMalformedResponse)
	}

	prompts := make([]string, len(result.Prompts))
	for i, raw := range result.Prompts {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if strings.TrimSpace(s) == "" {
				return nil, fmt.Errorf("%w: prompt %d is blank", ErrMalformedResponse, i)
			}
			prompts[i] = s
			continue
		}

		var compact bytes.Buffer
		if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) || json.Compact(&compact, raw) != nil {
			return nil, fmt.Errorf("%w: prompt %d is neither a string nor an object", ErrMalformedResponse, i)
		}
		prompts[i] = compact.String()
	}
	return prompts, nil
}

// checkVerbatim reports whether chunks, read in order, reproduce script
// exactly with nothing skipped or left over. Whitespace runs compare equal.
func checkVerbatim(script string, chunks []string) error {
	rest := normalizeSpace(script)
	for i, c := range chunks {
		want := normalizeSpace(c)
		// a chunk must end at a word boundary of the script
		if !strings.HasPrefix(rest, want) || (len(rest) > len(want) && rest[len(want)] != ' ') {
			return fmt.Errorf("%w: chunk %d %q", ErrNotVerbatim, i, c)
		}
		rest = strings.TrimPrefix(rest[len(want):], " ")
	}
	if rest != "" {
		return fmt.Errorf("%w: script text %q is not covered by any chunk", ErrNotVerbatim, rest)
	}
	return nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
