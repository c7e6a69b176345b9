package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"vidsight/internal"
)

var (
	config *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vidsight [YouTube URL or ID]",
	Short: "Chain-of-thought YouTube video analysis",
	Long: `Vidsight analyzes YouTube videos through a five-stage pipeline:

  1. Extraction      - video metadata, transcript, and top comments
  2. Summarization   - independent transcript and comment summaries
  3. Synthesis       - one compressed set of key insights
  4. Evaluation      - scoring against eight critical thinking standards
  5. Prioritization  - the follow-up questions most worth pursuing

Stages degrade gracefully: when an input is missing or a stage fails,
the remaining stages still run on whatever is available.`,
	Example: `  # Analyze a video
  vidsight "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  vidsight tAP1eZYEuKA

  # Markdown report written to a file
  vidsight tAP1eZYEuKA --format markdown --output report.md

  # Machine-readable output
  vidsight tAP1eZYEuKA --format json

  # Transcript only, skip evaluation
  vidsight tAP1eZYEuKA --transcript-only --no-evaluation`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyFlags(cmd); err != nil {
			return err
		}
		if err := config.ValidateKeys(); err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format != internal.FormatConsole && format != internal.FormatJSON && format != internal.FormatMarkdown {
			return fmt.Errorf("unknown output format %q (supported: console, json, markdown)", format)
		}

		app, err := internal.NewApp(cmd.Context(), config)
		if err != nil {
			return err
		}

		result, err := app.Analyze(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		output, err := app.Render(result, format)
		if err != nil {
			return err
		}

		if copyFlag, _ := cmd.Flags().GetBool("copy"); copyFlag {
			// Clipboard gets the raw markdown regardless of display format
			if err := clipboard.WriteAll(internal.MarkdownReport(result)); err != nil {
				return fmt.Errorf("copying report to clipboard: %w", err)
			}
			if !config.Quiet {
				fmt.Fprintln(os.Stderr, "Report copied to clipboard")
			}
		}

		if outputFile, _ := cmd.Flags().GetString("output"); outputFile != "" {
			if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
				return fmt.Errorf("writing report to %s: %w", outputFile, err)
			}
			if !config.Quiet {
				fmt.Fprintf(os.Stderr, "Report written to %s\n", outputFile)
			}
			return nil
		}

		fmt.Print(output)
		return nil
	},
}

// applyFlags folds command-line flags into the loaded configuration
func applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	p := &config.Pipeline

	if flags.Changed("max-comments") {
		p.MaxComments, _ = flags.GetInt("max-comments")
	}
	if flags.Changed("max-words") {
		p.MaxCommentWords, _ = flags.GetInt("max-words")
	}
	if flags.Changed("questions") {
		p.NumQuestions, _ = flags.GetInt("questions")
	}
	if flags.Changed("eval-backend") {
		p.EvaluationBackend, _ = flags.GetString("eval-backend")
	}

	for flag, target := range map[string]*bool{
		"no-transcript":         &p.EnableTranscript,
		"no-comments":           &p.EnableComments,
		"no-transcript-summary": &p.EnableTranscriptProcessing,
		"no-comments-summary":   &p.EnableCommentsProcessing,
		"no-synthesis":          &p.EnableSynthesis,
		"no-evaluation":         &p.EnableEvaluation,
		"no-prioritization":     &p.EnablePrioritization,
	} {
		if set, _ := flags.GetBool(flag); set {
			*target = false
		}
	}
	if set, _ := flags.GetBool("whisper-fallback"); set {
		p.EnableWhisperFallback = true
	}
	if set, _ := flags.GetBool("transcript-only"); set {
		p.EnableComments = false
		p.EnableCommentsProcessing = false
	}
	if set, _ := flags.GetBool("comments-only"); set {
		p.EnableTranscript = false
		p.EnableTranscriptProcessing = false
	}

	if flags.Changed("instruction") {
		p.Instruction, _ = flags.GetString("instruction")
	}
	instruction, err := config.DefaultInstruction()
	if err != nil {
		return err
	}
	p.Instruction = instruction

	if set, _ := cmd.Flags().GetBool("verbose"); set {
		config.Verbose = true
	}
	if set, _ := flags.GetBool("quiet"); set {
		config.Quiet = true
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config = internal.InitConfig()

	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}
	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}
	if err := internal.EnsureDefaultInstruction(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default instruction: %v\n", err)
	}

	// Cancel in-flight work on interrupt; a second signal kills the process
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
		<-sigCh
		os.Exit(1)
	}()

	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.Flags()
	flags.StringP("format", "f", internal.FormatConsole, "Output format (console, json, markdown)")
	flags.StringP("output", "o", "", "Write the report to a file instead of stdout")
	flags.Bool("copy", false, "Copy the markdown report to the clipboard")
	flags.String("instruction", "", "Summarization instruction (inline text or a file path)")
	flags.Int("max-comments", 0, "Maximum number of comments to retain")
	flags.Int("max-words", 0, "Maximum cumulative comment word count")
	flags.IntP("questions", "q", 0, "Number of priority questions to select")
	flags.String("eval-backend", "", "Backend for evaluation and prioritization (gemini or openai)")
	flags.Bool("no-transcript", false, "Skip transcript extraction")
	flags.Bool("no-comments", false, "Skip comment extraction")
	flags.Bool("no-transcript-summary", false, "Skip transcript summarization")
	flags.Bool("no-comments-summary", false, "Skip comment summarization")
	flags.Bool("no-synthesis", false, "Skip synthesis")
	flags.Bool("no-evaluation", false, "Skip the critical thinking evaluation")
	flags.Bool("no-prioritization", false, "Skip question prioritization")
	flags.Bool("transcript-only", false, "Analyze the transcript track only")
	flags.Bool("comments-only", false, "Analyze the comments track only")
	flags.Bool("whisper-fallback", false, "Transcribe audio with Whisper when no captions exist (costs money)")

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress progress output")
}
