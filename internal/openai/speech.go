package openai

import (
	"context"
	"fmt"
	"io"

	sdk "github.com/openai/openai-go"
)

// GenerateSpeech synthesizes text with voice and returns mp3 bytes.
func (c *Client) GenerateSpeech(ctx context.Context, text, voice string) ([]byte, error) {
	resp, err := c.api.Audio.Speech.New(ctx, sdk.AudioSpeechNewParams{
		Model:          SpeechModel,
		Input:          text,
		Voice:          sdk.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: sdk.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, wrapError("generate speech", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("speech response was empty")
	}
	return audio, nil
}
