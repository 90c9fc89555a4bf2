package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	sdk "github.com/openai/openai-go"

	"shorts-backend/internal/models"
)

// Transcribe returns the transcript of mp3 audio with word-level timestamps.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (*models.Transcription, error) {
	resp, err := c.api.Audio.Transcriptions.New(ctx, sdk.AudioTranscriptionNewParams{
		File:                   sdk.File(bytes.NewReader(audio), "audio.mp3", "audio/mpeg"),
		Model:                  TranscriptionModel,
		ResponseFormat:         sdk.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word"},
	})
	if err != nil {
		return nil, wrapError("transcribe audio", err)
	}

	// the SDK type only models text; words and duration come from verbose_json
	var result models.Transcription
	if err := json.Unmarshal([]byte(resp.RawJSON()), &result); err != nil {
		return nil, fmt.Errorf("failed to decode transcription: %w", err)
	}
	return &result, nil
}
