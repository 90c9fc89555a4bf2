package media

import "strings"

// ImageSize is the frame shape requested for every segment image.
const ImageSize = "portrait_16_9"

const DefaultImageModel = "flux-schnell"

// ResolveModel picks the image model key. An explicit model wins; otherwise
// the key is derived from the style's model name.
func ResolveModel(explicit, styleModel string) string {
	if explicit != "" {
		return explicit
	}
	switch {
	case strings.Contains(styleModel, "schnell"):
		return "flux-schnell"
	case strings.Contains(styleModel, "dev"):
		return "flux-dev"
	case strings.Contains(styleModel, "pro"):
		return "flux-pro"
	case strings.Contains(styleModel, "nano-banana"):
		return "nano-banana"
	}
	return DefaultImageModel
}

// IsOpenAIImageModel reports whether model is served by OpenAI rather than fal.ai.
func IsOpenAIImageModel(model string) bool {
	return model == "dall-e-3" || model == "gpt-image-1"
}
