package captions

import (
	"math"
	"sort"
)

// FPS is the frame rate of rendered videos.
const FPS = 30

// Timeline maps global frame numbers onto back-to-back segments.
type Timeline struct {
	fps       int
	starts    []float64
	durations []float64
	total     float64
}

func NewTimeline(durations []float64, fps int) *Timeline {
	if fps <= 0 {
		fps = FPS
	}

	t := &Timeline{
		fps:       fps,
		starts:    make([]float64, len(durations)),
		durations: make([]float64, len(durations)),
	}
	for i, d := range durations {
		if d < 0 {
			d = 0
		}
		t.starts[i] = t.total
		t.durations[i] = d
		t.total += d
	}
	return t
}

// Duration is the total length in seconds.
func (t *Timeline) Duration() float64 {
	return t.total
}

// TotalFrames is the frame count of the rendered video, never less than one.
func (t *Timeline) TotalFrames() int {
	return max(1, int(math.Floor(t.total*float64(t.fps))))
}

// Locate returns the segment playing at frame and the time into that segment.
// Frames before zero clamp to the start and frames past the end stay on the
// last segment. The index is -1 when the timeline has no segments.
func (t *Timeline) Locate(frame int) (int, float64) {
	if len(t.starts) == 0 {
		return -1, 0
	}

	seconds := math.Max(0, float64(frame)/float64(t.fps))

	// first segment whose end lies beyond the current time
	i := sort.Search(len(t.starts), func(i int) bool {
		return t.starts[i]+t.durations[i] > seconds
	})
	if i == len(t.starts) {
		i = len(t.starts) - 1
	}
	return i, seconds - t.starts[i]
}
