package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"shorts-backend/internal/config"
	"shorts-backend/internal/openai"
	"shorts-backend/internal/planner"
)

func newPlanCmd() *cobra.Command {
	var styleID string

	cmd := &cobra.Command{
		Use:   "plan <script.txt>",
		Short: "Split a script into segments and image prompts without generating media",
		Long: `Runs segment planning for a script file ("-" for stdin) and prints the planned
segments as JSON. Needs OPENAI_API_KEY; nothing is written to the database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cfg.OpenAIAPIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY is required")
			}

			script, err := readScript(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			catalog, err := config.LoadCatalog(catalogPath)
			if err != nil {
				return err
			}
			style := catalog.StyleOrDefault(styleID)

			p := planner.NewPlanner(openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey), log.Logger)

			segments, err := p.Plan(cmd.Context(), script, style.Name, style.SystemPrompt)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(segments)
		},
	}

	cmd.Flags().StringVar(&styleID, "style", "", "catalog style id (default: catalog default)")
	return cmd
}

func readScript(stdin io.Reader, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
