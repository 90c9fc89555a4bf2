package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shorts-backend/internal/models"
	"shorts-backend/internal/planner"
)

// chatServer answers the segmentation and prompt passes by model name.
func chatServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-plan", r.Header.Get("Authorization"))

		var req struct {
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		content := `{"prompts":["a foggy pier","a test pattern"]}`
		if req.Model == planner.SegmentModel {
			content = `{"chunks":["Hello world.","This is a test."]}`
		}
		body, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": content}}},
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPlanCmd_UsesConfiguredBaseURL(t *testing.T) {
	server := chatServer(t)
	t.Setenv("OPENAI_API_KEY", "sk-plan")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	script := filepath.Join(t.TempDir(), "script.txt")
	require.NoError(t, os.WriteFile(script, []byte("Hello world. This is a test.\n"), 0o600))

	out, err := runCmd(t, "", "plan", script)
	require.NoError(t, err)

	var segments []models.PlannedSegment
	require.NoError(t, json.Unmarshal([]byte(out), &segments))
	assert.Equal(t, []models.PlannedSegment{
		{Order: 0, Text: "Hello world.", ImagePrompt: "a foggy pier"},
		{Order: 1, Text: "This is a test.", ImagePrompt: "a test pattern"},
	}, segments)
}

func TestPlanCmd_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := runCmd(t, "Hello world.", "plan", "-")

	assert.EqualError(t, err, "OPENAI_API_KEY is required")
}
