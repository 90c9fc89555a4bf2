package media

import "strings"

// SecondsPerWord is the narration pace assumed when no measured duration exists.
const SecondsPerWord = 0.4

// EstimateDuration guesses how long text takes to narrate.
func EstimateDuration(text string) float64 {
	return float64(len(strings.Fields(text))) * SecondsPerWord
}
