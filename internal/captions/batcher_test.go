package captions_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shorts-backend/internal/captions"
)

func makeWords(n int) []captions.Word {
	words := make([]captions.Word, n)
	for i := range words {
		start := float64(i) * 0.5
		words[i] = captions.Word{
			Text:  strings.Repeat("w", i%4+1),
			Start: start,
			End:   start + 0.4,
		}
	}
	return words
}

func TestBatch_CountAndBounds(t *testing.T) {
	for _, tc := range []struct {
		words, size, want int
	}{
		{0, 3, 0},
		{1, 3, 1},
		{3, 3, 1},
		{4, 3, 2},
		{7, 3, 3},
		{10, 1, 10},
		{10, 4, 3},
	} {
		words := makeWords(tc.words)
		batches := captions.Batch(words, tc.size)
		require.Len(t, batches, tc.want, "words=%d size=%d", tc.words, tc.size)

		for _, b := range batches {
			require.NotEmpty(t, b.Words)
			assert.Equal(t, b.Words[0].Start, b.Start)
			assert.Equal(t, b.Words[len(b.Words)-1].End, b.End)
			assert.LessOrEqual(t, b.Start, b.End)

			texts := make([]string, len(b.Words))
			for i, w := range b.Words {
				texts[i] = w.Text
			}
			assert.Equal(t, strings.Join(texts, " "), b.Text)
		}

		assert.Equal(t, len(words), len(captions.Flatten(batches)))
		if len(words) > 0 {
			assert.Equal(t, words, captions.Flatten(batches))
		}
	}
}

func TestBatch_LastBatchSmaller(t *testing.T) {
	batches := captions.Batch(makeWords(5), 3)

	require.Len(t, batches, 2)
	assert.Len(t, batches[0].Words, 3)
	assert.Len(t, batches[1].Words, 2)
}

func TestBatch_SortsOutOfOrderInput(t *testing.T) {
	words := []captions.Word{
		{Text: "world", Start: 0.6, End: 1.0},
		{Text: "hello", Start: 0.0, End: 0.5},
		{Text: "again", Start: 1.1, End: 1.5},
	}

	batches := captions.Batch(words, 2)

	require.Len(t, batches, 2)
	assert.Equal(t, "hello world", batches[0].Text)
	assert.Equal(t, 0.0, batches[0].Start)
	assert.Equal(t, 1.0, batches[0].End)
	assert.Equal(t, "again", batches[1].Text)
	// input slice is left untouched
	assert.Equal(t, "world", words[0].Text)
}

func TestBatch_TrimsWordText(t *testing.T) {
	words := []captions.Word{
		{Text: " Hello", Start: 0, End: 0.4},
		{Text: " world.", Start: 0.5, End: 0.9},
	}

	batches := captions.Batch(words, 3)

	require.Len(t, batches, 1)
	assert.Equal(t, "Hello world.", batches[0].Text)
	assert.Equal(t, "Hello", batches[0].Words[0].Text)
	assert.Equal(t, batches[0].Text, joinWords(batches[0].Words))
	assert.Equal(t, " Hello", words[0].Text, "input is left untouched")
}

func joinWords(words []captions.Word) string {
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.Text
	}
	return strings.Join(texts, " ")
}

func TestBatch_NonPositiveSizeFallsBackToOne(t *testing.T) {
	assert.Len(t, captions.Batch(makeWords(4), 0), 4)
	assert.Len(t, captions.Batch(makeWords(4), -2), 4)
}
