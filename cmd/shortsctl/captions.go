package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shorts-backend/internal/captions"
	"shorts-backend/internal/models"
)

func newCaptionsCmd() *cobra.Command {
	var (
		frame int
		step  int
	)

	cmd := &cobra.Command{
		Use:   "captions <project.json>",
		Short: "Print the caption shown at each frame of a project",
		Long: `Reads a project as returned by GET /api/v1/projects/:project_id ("-" for stdin)
and prints the caption state every --step frames, or at a single --frame as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := readProject(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if frame >= 0 {
				return writeCaptionJSON(cmd.OutOrStdout(), project, frame)
			}
			return writeCaptionTable(cmd.OutOrStdout(), project, step)
		},
	}

	cmd.Flags().IntVar(&frame, "frame", -1, "single frame to resolve")
	cmd.Flags().IntVar(&step, "step", captions.FPS/2, "frames between printed rows")
	return cmd
}

func readProject(stdin io.Reader, path string) (*models.ProjectResponse, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open project: %w", err)
		}
		defer f.Close()
		r = f
	}

	var project models.ProjectResponse
	if err := json.NewDecoder(r).Decode(&project); err != nil {
		return nil, fmt.Errorf("failed to decode project: %w", err)
	}
	if len(project.Segments) == 0 {
		return nil, fmt.Errorf("project has no segments")
	}
	return &project, nil
}

func projectTimeline(project *models.ProjectResponse) *captions.Timeline {
	durations := make([]float64, len(project.Segments))
	for i, s := range project.Segments {
		durations[i] = s.Duration
	}
	return captions.NewTimeline(durations, captions.FPS)
}

func resolveFrame(project *models.ProjectResponse, timeline *captions.Timeline, frame int) models.CaptionResponse {
	index, segmentTime := timeline.Locate(frame)
	segment := project.Segments[index]
	return models.CaptionResponse{
		Frame:        frame,
		TotalFrames:  timeline.TotalFrames(),
		SegmentIndex: index,
		SegmentTime:  segmentTime,
		Caption:      captions.Resolve(segment.WordTimings, segmentTime, segment.Text),
	}
}

func writeCaptionJSON(w io.Writer, project *models.ProjectResponse, frame int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resolveFrame(project, projectTimeline(project), frame))
}

// writeCaptionTable prints one row per sampled frame. The active word is
// wrapped in brackets and completed words are upper-cased.
func writeCaptionTable(w io.Writer, project *models.ProjectResponse, step int) error {
	if step < 1 {
		step = 1
	}
	timeline := projectTimeline(project)

	for frame := 0; frame < timeline.TotalFrames(); frame += step {
		c := resolveFrame(project, timeline, frame)
		words := make([]string, len(c.Caption.Words))
		for i, ws := range c.Caption.Words {
			switch {
			case ws.IsActive:
				words[i] = "[" + ws.Text + "]"
			case ws.IsCompleted:
				words[i] = strings.ToUpper(ws.Text)
			default:
				words[i] = ws.Text
			}
		}
		if _, err := fmt.Fprintf(w, "%5d  seg %-2d %6.2fs  %s\n", frame, c.SegmentIndex, c.SegmentTime, strings.Join(words, " ")); err != nil {
			return err
		}
	}
	return nil
}
