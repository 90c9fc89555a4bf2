package captions

// WordState is the highlight state of one word at a point in time.
type WordState struct {
	Text        string `json:"text"`
	IsActive    bool   `json:"is_active"`
	IsCompleted bool   `json:"is_completed"`
}

// Caption is what gets drawn for a segment on a single frame.
type Caption struct {
	DisplayText string      `json:"display_text"`
	Words       []WordState `json:"words"`
}

// Resolve picks the caption batch to show at currentTime (segment-relative
// seconds) and the highlight state of each of its words.
//
// A batch is current when every earlier batch has ended, currentTime has reached
// its start and has not passed its end. Without a current batch the last batch
// that already ended is shown fully completed; before anything has been spoken
// the first batch is shown as an unhighlighted preview. With no batches at all,
// segmentText is shown as a single active unit.
//
// Resolve keeps no state between calls, so it is safe for scrubbing where time
// moves backwards.
func Resolve(batches []WordBatch, currentTime float64, segmentText string) Caption {
	if len(batches) == 0 {
		return Caption{
			DisplayText: segmentText,
			Words:       []WordState{{Text: segmentText, IsActive: true}},
		}
	}

	previousEnded := true
	for _, b := range batches {
		if previousEnded && currentTime >= b.Start && currentTime <= b.End {
			return Caption{DisplayText: b.Text, Words: wordStates(b, currentTime)}
		}
		previousEnded = previousEnded && b.End < currentTime
	}

	last := -1
	for i, b := range batches {
		if b.End < currentTime {
			last = i
		}
	}

	if last >= 0 {
		b := batches[last]
		words := make([]WordState, len(b.Words))
		for i, w := range b.Words {
			words[i] = WordState{Text: w.Text, IsCompleted: true}
		}
		return Caption{DisplayText: b.Text, Words: words}
	}

	first := batches[0]
	words := make([]WordState, len(first.Words))
	for i, w := range first.Words {
		words[i] = WordState{Text: w.Text}
	}
	return Caption{DisplayText: first.Text, Words: words}
}

func wordStates(b WordBatch, t float64) []WordState {
	states := make([]WordState, len(b.Words))
	for i, w := range b.Words {
		states[i] = WordState{
			Text:        w.Text,
			IsActive:    t >= w.Start && t <= w.End,
			IsCompleted: t > w.End,
		}
	}
	return states
}
