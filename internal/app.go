package internal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// App holds the application state and dependencies
type App struct {
	config *Config
	log    zerolog.Logger
	ui     *UIManager

	openai *OpenAIClient

	metadata MetadataFetcher
	comments CommentPager
	sources  []TranscriptSource

	summaryBackend   TextGenerator
	synthesisBackend TextGenerator
	evalBackend      TextGenerator
	progress         ProgressReporter

	pipeline *Pipeline
}

// AppOption customizes App creation, mainly for tests
type AppOption func(*App)

// WithMetadataFetcher sets a custom metadata source
func WithMetadataFetcher(fetcher MetadataFetcher) AppOption {
	return func(a *App) { a.metadata = fetcher }
}

// WithCommentPager sets a custom comment source
func WithCommentPager(pager CommentPager) AppOption {
	return func(a *App) { a.comments = pager }
}

// WithTranscriptSources replaces the transcript fallback chain
func WithTranscriptSources(sources ...TranscriptSource) AppOption {
	return func(a *App) { a.sources = sources }
}

// WithSummaryBackend sets the backend used for track summaries
func WithSummaryBackend(backend TextGenerator) AppOption {
	return func(a *App) { a.summaryBackend = backend }
}

// WithSynthesisBackend sets the backend used for synthesis
func WithSynthesisBackend(backend TextGenerator) AppOption {
	return func(a *App) { a.synthesisBackend = backend }
}

// WithEvaluationBackend sets the backend used for evaluation and
// prioritization
func WithEvaluationBackend(backend TextGenerator) AppOption {
	return func(a *App) { a.evalBackend = backend }
}

// WithProgress sets a custom progress reporter
func WithProgress(progress ProgressReporter) AppOption {
	return func(a *App) { a.progress = progress }
}

// NewApp initializes the application: clients for whichever backends
// the enabled stages need, the transcript fallback chain, and the
// pipeline. Options are applied first so injected fakes suppress the
// corresponding real client.
func NewApp(ctx context.Context, config *Config, options ...AppOption) (*App, error) {
	app := &App{
		config: config,
		log:    NewLogger(config.Verbose, config.Quiet),
		ui:     NewUIManager(config.Verbose, config.Quiet),
	}
	for _, option := range options {
		option(app)
	}
	if err := app.wire(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (app *App) wire(ctx context.Context) error {
	cfg := app.config

	if app.metadata == nil || app.comments == nil {
		yt, err := NewYouTubeClient(ctx, cfg.YouTubeAPIKey)
		if err != nil {
			return err
		}
		if app.metadata == nil {
			app.metadata = yt
		}
		if app.comments == nil {
			app.comments = yt
		}
	}

	// A backend is only required while some enabled stage would call it.
	// Disabled stages get a stub the skip logic never reaches, so a run
	// with summarization toggled off needs no OpenAI key at all.
	needsSummaries := cfg.Pipeline.EnableTranscriptProcessing || cfg.Pipeline.EnableCommentsProcessing
	needsEval := cfg.Pipeline.EnableEvaluation || cfg.Pipeline.EnablePrioritization
	evalOnOpenAI := cfg.Pipeline.EvaluationBackend == EvaluationBackendOpenAI

	needsOpenAI := (needsSummaries && app.summaryBackend == nil) ||
		(needsEval && evalOnOpenAI && app.evalBackend == nil) ||
		(cfg.Pipeline.EnableWhisperFallback && app.sources == nil)
	if needsOpenAI && cfg.OpenAIAPIKey != "" {
		app.openai = NewOpenAIClient(cfg.OpenAIAPIKey)
	}

	var gemini *GeminiClient
	needsGemini := (cfg.Pipeline.EnableSynthesis && app.synthesisBackend == nil) ||
		(needsEval && !evalOnOpenAI && app.evalBackend == nil)
	if needsGemini && cfg.GeminiAPIKey != "" {
		var err error
		gemini, err = NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return err
		}
	}

	if app.summaryBackend == nil {
		switch {
		case !needsSummaries:
			app.summaryBackend = noBackend{}
		case app.openai == nil:
			return fmt.Errorf("summarization requires OPENAI_API_KEY")
		default:
			app.summaryBackend = app.openai
		}
	}
	if app.synthesisBackend == nil {
		switch {
		case !cfg.Pipeline.EnableSynthesis:
			app.synthesisBackend = noBackend{}
		case gemini == nil:
			return fmt.Errorf("synthesis requires GOOGLE_GENAI_API_KEY")
		default:
			app.synthesisBackend = gemini
		}
	}
	if app.evalBackend == nil {
		switch {
		case !needsEval:
			app.evalBackend = noBackend{}
		case evalOnOpenAI:
			if app.openai == nil {
				return fmt.Errorf("evaluation backend %q requires OPENAI_API_KEY", cfg.Pipeline.EvaluationBackend)
			}
			app.evalBackend = app.openai
		default:
			if gemini == nil {
				return fmt.Errorf("evaluation backend %q requires GOOGLE_GENAI_API_KEY", cfg.Pipeline.EvaluationBackend)
			}
			app.evalBackend = gemini
		}
	}

	if app.sources == nil {
		app.sources = []TranscriptSource{
			NewYTDLPSource(cfg.CacheDir, app.log),
			NewTimedTextSource(http.DefaultClient),
		}
		if cfg.Pipeline.EnableWhisperFallback && app.openai != nil {
			app.sources = append(app.sources, NewWhisperSource(app.openai, cfg.CacheDir, app.log))
		}
	}
	if app.progress == nil {
		app.progress = app.ui
	}

	extractor := NewExtractor(app.metadata, app.comments, app.sources, app.log)
	summarizer := NewSummarizer(app.summaryBackend, cfg.Pipeline, app.log)
	synthesizer := NewSynthesizer(app.synthesisBackend, cfg.Pipeline, app.log)
	evaluator := NewEvaluator(app.evalBackend, cfg.Pipeline, app.log)
	prioritizer := NewPrioritizer(app.evalBackend, cfg.Pipeline, app.log)

	app.pipeline = NewPipeline(extractor, summarizer, synthesizer, evaluator, prioritizer,
		cfg.Pipeline, app.progress, app.log)
	return nil
}

// Analyze runs the full pipeline on a video URL or ID
func (app *App) Analyze(ctx context.Context, arg string) (*AnalysisResult, error) {
	ref, err := ParseArg(arg)
	if err != nil {
		return nil, err
	}
	return app.pipeline.Run(ctx, ref)
}

// Metadata fetches video metadata without running the pipeline
func (app *App) Metadata(ctx context.Context, arg string) (VideoMetadata, error) {
	ref, err := ParseArg(arg)
	if err != nil {
		return VideoMetadata{}, err
	}
	return app.metadata.FetchMetadata(ctx, ref.ID)
}

// Output format names accepted by Render
const (
	FormatConsole  = "console"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Render serializes a result in the requested format
func (app *App) Render(result *AnalysisResult, format string) (string, error) {
	switch format {
	case FormatConsole:
		return ConsoleReport(result), nil
	case FormatJSON:
		return JSONReport(result)
	case FormatMarkdown:
		return MarkdownReport(result), nil
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}
