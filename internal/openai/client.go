package openai

import (
	"errors"
	"fmt"
	"time"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	SpeechModel        = sdk.SpeechModelGPT4oMiniTTS
	TranscriptionModel = sdk.AudioModelWhisper1
)

// Client narrows the OpenAI SDK to the four calls the pipeline makes.
type Client struct {
	api sdk.Client
}

// NewClient builds a client against baseURL. Extra options are applied last,
// so callers can override retries or the HTTP client.
func NewClient(baseURL, apiKey string, opts ...option.RequestOption) *Client {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(120 * time.Second),
	}
	if baseURL != "" {
		base = append(base, option.WithBaseURL(baseURL))
	}
	return &Client{api: sdk.NewClient(append(base, opts...)...)}
}

// wrapError names the failed operation and, for API errors, the HTTP status.
func wrapError(action string, err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("failed to %s: status %d: %w", action, apiErr.StatusCode, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
