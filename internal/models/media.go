package models

import (
	"github.com/google/uuid"

	"shorts-backend/internal/captions"
)

// PlannedSegment is one narration chunk with its visual prompt, before it is stored.
type PlannedSegment struct {
	Order       int    `json:"order"`
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt"`
}

type ImageRequest struct {
	Prompt string
	Style  string
	Size   string
	Model  string
}

// GeneratedImage carries either inline bytes or a URL to fetch them from.
type GeneratedImage struct {
	URL         string
	Data        []byte
	ContentType string
}

type TranscribedWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type Transcription struct {
	Text     string            `json:"text"`
	Words    []TranscribedWord `json:"words"`
	Duration float64           `json:"duration"`
}

// CaptionWords converts transcribed words to caption words.
func (t *Transcription) CaptionWords() []captions.Word {
	words := make([]captions.Word, len(t.Words))
	for i, w := range t.Words {
		words[i] = captions.Word{Text: w.Word, Start: w.Start, End: w.End}
	}
	return words
}

// Artifact is a persisted generated file.
type Artifact struct {
	Key string
	URL string
}

type ImageOutcome struct {
	Index    int
	Success  bool
	ImageURL string
	Error    string
	Prompt   string
}

type AudioOutcome struct {
	Index       int
	SegmentID   uuid.UUID
	AudioURL    string
	Duration    float64
	WordTimings []captions.WordBatch
}

// MediaGenerationResult holds per-segment outcomes; position i belongs to segment i.
type MediaGenerationResult struct {
	ImageResults []ImageOutcome
	AudioResults []AudioOutcome
}

// FailedImages counts image outcomes that did not succeed.
func (r *MediaGenerationResult) FailedImages() int {
	n := 0
	for _, o := range r.ImageResults {
		if !o.Success {
			n++
		}
	}
	return n
}

// ArtifactUpload is a generated file on its way to object storage.
type ArtifactUpload struct {
	UserID      uuid.UUID
	ProjectID   uuid.UUID
	SegmentID   uuid.UUID
	Index       int
	FileType    string
	Ext         string
	ContentType string
	Data        []byte
}
