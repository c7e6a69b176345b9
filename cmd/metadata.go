package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"vidsight/internal"
)

// metadataCmd fetches and prints video metadata without running the pipeline
var metadataCmd = &cobra.Command{
	Use:   "metadata [YouTube URL or ID]",
	Short: "Show video metadata",
	Example: `  # Show metadata for a video
  vidsight metadata tAP1eZYEuKA

  # Machine-readable metadata
  vidsight metadata tAP1eZYEuKA --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.YouTubeAPIKey == "" {
			return fmt.Errorf("missing API key: YOUTUBE_API_KEY")
		}

		// Metadata lookup runs no generative stage, so no LLM keys needed
		cfg := *config
		cfg.Pipeline.EnableTranscriptProcessing = false
		cfg.Pipeline.EnableCommentsProcessing = false
		cfg.Pipeline.EnableSynthesis = false
		cfg.Pipeline.EnableEvaluation = false
		cfg.Pipeline.EnablePrioritization = false
		cfg.Pipeline.EnableWhisperFallback = false

		app, err := internal.NewApp(cmd.Context(), &cfg)
		if err != nil {
			return err
		}

		metadata, err := app.Metadata(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(metadata, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Title:     %s\n", metadata.Title)
		fmt.Printf("Channel:   %s\n", metadata.Channel)
		if !metadata.PublishedAt.IsZero() {
			fmt.Printf("Published: %s\n", metadata.PublishedAt.Format("2006-01-02"))
		}
		fmt.Printf("Duration:  %.0f seconds\n", metadata.Duration)
		fmt.Printf("Views:     %d\n", metadata.ViewCount)
		fmt.Printf("Likes:     %d\n", metadata.LikeCount)
		fmt.Printf("URL:       %s\n", metadata.URL)
		return nil
	},
}

func init() {
	metadataCmd.Flags().Bool("json", false, "Output metadata as JSON")
	rootCmd.AddCommand(metadataCmd)
}
