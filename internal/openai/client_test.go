package openai_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shorts-backend/internal/models"
	"shorts-backend/internal/openai"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *openai.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return openai.NewClient(server.URL+"/", "test-key", option.WithMaxRetries(0))
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func TestClient_CompleteJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])
		assert.Equal(t, 1.0, req["temperature"])
		assert.Equal(t, map[string]any{"type": "json_object"}, req["response_format"])

		messages := req["messages"].([]any)
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]any)["role"])
		assert.Equal(t, "the script", messages[1].(map[string]any)["content"])

		writeJSON(w, `{"choices":[{"message":{"content":"{\"chunks\":[\"a\"]}"}}]}`)
	})

	content, err := client.CompleteJSON(context.Background(), "gpt-4o-mini", "system", "the script", 1)

	require.NoError(t, err)
	assert.Equal(t, `{"chunks":["a"]}`, content)
}

func TestClient_CompleteJSON_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_exceeded"}}`))
	})

	_, err := client.CompleteJSON(context.Background(), "m", "s", "u", 0.8)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")

	var apiErr *sdk.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "slow down", apiErr.Message)
}

func TestClient_CompleteJSON_NoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"choices":[]}`)
	})

	_, err := client.CompleteJSON(context.Background(), "m", "s", "u", 0.8)
	assert.ErrorContains(t, err, "no choices")
}

func TestClient_GenerateSpeech(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, openai.SpeechModel, req["model"])
		assert.Equal(t, "echo", req["voice"])
		assert.Equal(t, "Hello world.", req["input"])

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-mp3-bytes"))
	})

	audio, err := client.GenerateSpeech(context.Background(), "Hello world.", "echo")

	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-mp3-bytes"), audio)
}

func TestClient_Transcribe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, openai.TranscriptionModel, r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "word", r.FormValue("timestamp_granularities[]"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "audio.mp3", header.Filename)
		assert.Equal(t, []byte("mp3"), data)

		writeJSON(w, `{
			"text": "Hello world.",
			"duration": 1.2,
			"words": [
				{"word": "Hello", "start": 0.0, "end": 0.5},
				{"word": "world", "start": 0.6, "end": 1.1}
			]
		}`)
	})

	tr, err := client.Transcribe(context.Background(), []byte("mp3"))

	require.NoError(t, err)
	assert.Equal(t, 1.2, tr.Duration)
	assert.Equal(t, []models.TranscribedWord{
		{Word: "Hello", Start: 0.0, End: 0.5},
		{Word: "world", Start: 0.6, End: 1.1},
	}, tr.Words)
}

func TestClient_GenerateImage_Base64(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dall-e-3", req["model"])
		assert.Equal(t, "1024x1792", req["size"])
		assert.Equal(t, "b64_json", req["response_format"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(png)}},
		})
	})

	img, err := client.GenerateImage(context.Background(), models.ImageRequest{
		Prompt: "a foggy pier",
		Size:   "portrait_16_9",
		Model:  "dall-e-3",
	})

	require.NoError(t, err)
	assert.Equal(t, png, img.Data)
	assert.Empty(t, img.URL)
}

func TestClient_GenerateImage_GPTImageOmitsResponseFormat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotContains(t, req, "response_format")
		assert.Equal(t, "1024x1536", req["size"])

		writeJSON(w, `{"data":[{"url":"https://cdn.example.com/a.png"}]}`)
	})

	img, err := client.GenerateImage(context.Background(), models.ImageRequest{
		Prompt: "p",
		Size:   "portrait_16_9",
		Model:  "gpt-image-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", img.URL)
}

func TestClient_GenerateImage_Empty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":[]}`)
	})

	_, err := client.GenerateImage(context.Background(), models.ImageRequest{Prompt: "p", Model: "dall-e-3"})
	assert.EqualError(t, err, "no image generated")
}
