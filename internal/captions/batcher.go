package captions

import (
	"sort"
	"strings"
)

// DefaultBatchSize is the number of words displayed together as one caption.
const DefaultBatchSize = 3

// Word is a single transcribed word with segment-relative timing in seconds.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// WordBatch is a group of consecutively spoken words shown as one caption.
// Start and End always equal the bounds of the first and last word.
type WordBatch struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

// Batch partitions words into consecutive groups of size words. The last group
// may be smaller. Word text is trimmed. Words are stable-sorted by start time first because
// transcription output is not guaranteed to arrive ordered.
func Batch(words []Word, size int) []WordBatch {
	if len(words) == 0 {
		return nil
	}
	if size < 1 {
		size = 1
	}

	sorted := make([]Word, len(words))
	for i, w := range words {
		w.Text = strings.TrimSpace(w.Text)
		sorted[i] = w
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	batches := make([]WordBatch, 0, (len(sorted)+size-1)/size)
	for i := 0; i < len(sorted); i += size {
		group := sorted[i:min(i+size, len(sorted))]

		texts := make([]string, len(group))
		for j, w := range group {
			texts[j] = w.Text
		}

		batches = append(batches, WordBatch{
			Text:  strings.Join(texts, " "),
			Start: group[0].Start,
			End:   group[len(group)-1].End,
			Words: append([]Word(nil), group...),
		})
	}

	return batches
}

// Flatten returns the words of all batches in order.
func Flatten(batches []WordBatch) []Word {
	var words []Word
	for _, b := range batches {
		words = append(words, b.Words...)
	}
	return words
}
