package planner

import (
	"fmt"
	"strings"
)

const segmentSystemPrompt = `You are a video script segmenter. Break down the provided script into meaningful chunks WITHOUT modifying the original text. Each chunk should:
1. Be 3-5 seconds of speaking time (roughly 8-15 words)
2. Form a complete thought or sentence fragment that makes sense
3. Be suitable for generating a single image that represents the content
4. Flow naturally from one chunk to the next
5. There can be a maximum of only %d chunks
6. IMPORTANT: Use the EXACT original text without any modifications, corrections, or improvements

The response will be structured as a JSON object with a "chunks" array containing the original script segments.`

const promptSystemPrompt = `You are an expert at creating detailed image prompts for AI image generation that maintain visual consistency across a video sequence. For each script chunk provided, create a compelling visual prompt that:

1. Captures the essence and mood of the text
2. Is optimized for the %[1]s visual style
3. Includes cinematic composition details
4. Specifies lighting, atmosphere, and visual effects
5. Is detailed enough to generate high-quality, engaging images
6. MAINTAINS VISUAL CONSISTENCY: Each image should feel like a natural progression from the previous frame
7. CREATES SMOOTH TRANSITIONS: Include consistent elements like camera angle, lighting setup, color palette, and environmental details
8. PRESERVES CONTINUITY: Keep consistent character positioning, environmental context, and visual style throughout the sequence

Base image style: %[2]s

CRITICAL CONSISTENCY REQUIREMENTS:
- Maintain the same camera perspective/angle throughout the sequence
- Keep consistent lighting conditions (time of day, light sources, shadows)
- Preserve environmental elements (location, weather, atmosphere)
- Use consistent color palette and mood
- Ensure smooth visual flow from one frame to the next
- Each prompt should reference visual elements that connect to the previous scene

Return a JSON object with "prompts" array containing exactly one detailed prompt for each chunk, in the same order, ensuring each builds upon the previous visual context.`

func segmentInstructions() string {
	return fmt.Sprintf(segmentSystemPrompt, MaxChunks)
}

func promptInstructions(styleName, stylePrompt string) string {
	if styleName == "" {
		styleName = DefaultStyleName
	}
	if stylePrompt == "" {
		stylePrompt = "cinematic, high quality, detailed"
	}
	return fmt.Sprintf(promptSystemPrompt, styleName, stylePrompt)
}

func promptUserContent(chunksJSON string, prior []string) string {
	var b strings.Builder
	if len(prior) > 0 {
		b.WriteString("Earlier prompts in this sequence, continue from the last one:\n")
		for i, p := range prior {
			fmt.Fprintf(&b, "%d. %s\n", i+1, p)
		}
		b.WriteString("\n")
	}
	b.WriteString("Create visually consistent image prompts for these script chunks that will form a cohesive video sequence: ")
	b.WriteString(chunksJSON)
	return b.String()
}
