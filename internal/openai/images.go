package openai

import (
	"context"
	"encoding/base64"
	"fmt"

	sdk "github.com/openai/openai-go"

	"shorts-backend/internal/models"
)

// imageSize maps the provider-neutral size names onto OpenAI sizes.
func imageSize(model, size string) string {
	switch size {
	case "portrait_16_9", "portrait_4_3":
		if model == sdk.ImageModelGPTImage1 {
			return "1024x1536"
		}
		return "1024x1792"
	case "landscape_16_9", "landscape_4_3":
		if model == sdk.ImageModelGPTImage1 {
			return "1536x1024"
		}
		return "1792x1024"
	case "", "square", "square_hd":
		return "1024x1024"
	}
	return size
}

// GenerateImage creates one image. The result carries decoded bytes when the
// API returns base64 and a URL otherwise.
func (c *Client) GenerateImage(ctx context.Context, req models.ImageRequest) (*models.GeneratedImage, error) {
	params := sdk.ImageGenerateParams{
		Model:  req.Model,
		Prompt: req.Prompt,
		N:      sdk.Int(1),
		Size:   sdk.ImageGenerateParamsSize(imageSize(req.Model, req.Size)),
	}
	// gpt-image-1 always answers with base64 and rejects the field
	if req.Model != sdk.ImageModelGPTImage1 {
		params.ResponseFormat = sdk.ImageGenerateParamsResponseFormatB64JSON
	}

	resp, err := c.api.Images.Generate(ctx, params)
	if err != nil {
		return nil, wrapError("generate image", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no image generated")
	}

	img := resp.Data[0]
	if img.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data: %w", err)
		}
		return &models.GeneratedImage{Data: data, ContentType: "image/png"}, nil
	}
	if img.URL != "" {
		return &models.GeneratedImage{URL: img.URL}, nil
	}
	return nil, fmt.Errorf("no image generated")
}
