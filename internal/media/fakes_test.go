package media_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"shorts-backend/internal/models"
)

type fakeImages struct {
	mu       sync.Mutex
	requests []models.ImageRequest
	failOn   map[string]bool
	inline   bool
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeImages) GenerateImage(ctx context.Context, req models.ImageRequest) (*models.GeneratedImage, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	for marker := range f.failOn {
		if strings.Contains(req.Prompt, marker) {
			return nil, errors.New("failed to generate image: status 500, body: boom")
		}
	}
	if f.inline {
		return &models.GeneratedImage{Data: []byte("\x89PNG\r\n\x1a\n"), ContentType: "image/png"}, nil
	}
	return &models.GeneratedImage{URL: "https://fal.media/" + req.Prompt}, nil
}

type fakeDownloader struct{}

func (fakeDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	return []byte("jpeg:" + url), nil
}

type failingDownloader struct{}

func (failingDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	return nil, errors.New("failed to download: status 403, body: expired")
}

type fakeSpeech struct {
	failOn string
}

func (f *fakeSpeech) GenerateSpeech(ctx context.Context, text, voice string) ([]byte, error) {
	if f.failOn != "" && text == f.failOn {
		return nil, errors.New("failed to generate speech: status 500, body: tts down")
	}
	return []byte("mp3:" + text), nil
}

// fakeTranscriber produces one word per whitespace token, 0.5s each.
type fakeTranscriber struct {
	fail         bool
	zeroDuration bool
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte) (*models.Transcription, error) {
	if f.fail {
		return nil, errors.New("whisper unavailable")
	}
	text := strings.TrimPrefix(string(audio), "mp3:")
	tr := &models.Transcription{Text: text}
	for i, w := range strings.Fields(text) {
		tr.Words = append(tr.Words, models.TranscribedWord{Word: w, Start: float64(i) * 0.5, End: float64(i)*0.5 + 0.4})
	}
	if !f.zeroDuration {
		tr.Duration = float64(len(tr.Words))*0.5 + 0.1
	}
	return tr, nil
}

type fakeArtifacts struct {
	mu          sync.Mutex
	uploads     []models.ArtifactUpload
	files       []*models.ProjectFile
	failUpload  string
	failRecords bool
}

func (f *fakeArtifacts) Upload(ctx context.Context, u models.ArtifactUpload) (*models.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload == u.FileType {
		return nil, errors.New("storage unavailable")
	}
	f.uploads = append(f.uploads, u)
	key := fmt.Sprintf("users/%s/projects/%s/segments/%d_%s.%s", u.UserID, u.ProjectID, u.Index, u.SegmentID, u.Ext)
	return &models.Artifact{Key: key, URL: "https://cdn.test/" + key}, nil
}

func (f *fakeArtifacts) RecordFile(ctx context.Context, file *models.ProjectFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRecords {
		return errors.New("insert failed")
	}
	f.files = append(f.files, file)
	return nil
}
