package falai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shorts-backend/internal/models"
)

const DefaultModel = "flux-schnell"

// modelPaths maps model keys onto fal.run endpoint paths.
var modelPaths = map[string]string{
	"flux-schnell": "/fal-ai/flux/schnell",
	"flux-dev":     "/fal-ai/flux/dev",
	"flux-pro":     "/fal-ai/flux-pro",
	"nano-banana":  "/fal-ai/nano-banana",
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	backoffs   []time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBackoff sets the waits between download attempts.
func WithBackoff(backoffs ...time.Duration) Option {
	return func(c *Client) {
		c.backoffs = backoffs
	}
}

type generateRequest struct {
	Prompt              string  `json:"prompt"`
	ImageSize           string  `json:"image_size"`
	NumInferenceSteps   int     `json:"num_inference_steps"`
	GuidanceScale       float64 `json:"guidance_scale"`
	NumImages           int     `json:"num_images"`
	EnableSafetyChecker bool    `json:"enable_safety_checker"`
}

type generateResponse struct {
	Images []struct {
		URL         string `json:"url"`
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ContentType string `json:"content_type"`
	} `json:"images"`
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoffs: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModelPath returns the endpoint path for model, falling back to flux-schnell.
func ModelPath(model string) string {
	if p, ok := modelPaths[model]; ok {
		return p
	}
	return modelPaths[DefaultModel]
}

// GenerateImage runs a text-to-image model and returns the hosted image URL.
func (c *Client) GenerateImage(ctx context.Context, req models.ImageRequest) (*models.GeneratedImage, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("fal.ai API key not configured")
	}

	prompt := req.Prompt
	if req.Style != "" {
		prompt += ", " + req.Style
	} else {
		prompt += ", cinematic, high quality, detailed"
	}

	size := req.Size
	if size == "" {
		size = "portrait_16_9"
	}

	jsonData, err := json.Marshal(generateRequest{
		Prompt:              prompt,
		ImageSize:           size,
		NumInferenceSteps:   4,
		GuidanceScale:       3.5,
		NumImages:           1,
		EnableSafetyChecker: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ModelPath(req.Model), bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to generate image: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	if len(result.Images) == 0 || result.Images[0].URL == "" {
		return nil, fmt.Errorf("no image generated")
	}

	return &models.GeneratedImage{
		URL:         result.Images[0].URL,
		ContentType: result.Images[0].ContentType,
	}, nil
}

// Download fetches a generated file, retrying transient failures.
func (c *Client) Download(ctx context.Context, fileURL string) ([]byte, error) {
	var data []byte
	err := c.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = c.download(ctx, fileURL)
		return err
	}, len(c.backoffs)+1)
	return data, err
}

func (c *Client) download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to download file: status %d, body: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// RetryWithBackoff executes a function with exponential backoff retry logic
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if i < len(c.backoffs) && i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoffs[i]):
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
