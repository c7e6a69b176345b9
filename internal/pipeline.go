package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Step names as they appear in records and reports
const (
	StepMetadata          = "metadata"
	StepTranscript        = "transcript"
	StepComments          = "comments"
	StepTranscriptSummary = "transcript summary"
	StepCommentsSummary   = "comments summary"
	StepSynthesis         = "synthesis"
	StepEvaluation        = "evaluation"
	StepPrioritization    = "prioritization"
)

// decision is the outcome of the pre-flight check for one step
type decision int

const (
	decisionRun decision = iota
	decisionSkipDisabled
	decisionSkipNoInput
)

// decide determines whether a step runs. Disabled wins over missing
// input, so toggling a stage off always reads as "skipped (disabled)"
// even when its input is absent too.
func decide(enabled, hasInput bool) decision {
	switch {
	case !enabled:
		return decisionSkipDisabled
	case !hasInput:
		return decisionSkipNoInput
	default:
		return decisionRun
	}
}

func (d decision) status() StepStatus {
	if d == decisionSkipNoInput {
		return StepSkippedNoInput
	}
	return StepSkippedDisabled
}

// errNoData marks a step that ran but found nothing to work with. It is
// recorded as "skipped (no input)" rather than a failure.
var errNoData = errors.New("no data")

// ProgressReporter receives step lifecycle events for interactive UIs.
// Implementations must be safe for concurrent use; the two summary
// steps report from separate goroutines.
type ProgressReporter interface {
	StepStarted(name string)
	StepFinished(record ProcessingStepRecord)
}

// noopProgress is used when no reporter is attached
type noopProgress struct{}

func (noopProgress) StepStarted(string)               {}
func (noopProgress) StepFinished(ProcessingStepRecord) {}

// Pipeline runs the five analysis stages in order, degrading gracefully:
// any non-fatal step failure is recorded and downstream stages see the
// missing input. Only metadata extraction aborts the run.
type Pipeline struct {
	extractor   *Extractor
	summarizer  *Summarizer
	synthesizer *Synthesizer
	evaluator   *Evaluator
	prioritizer *Prioritizer
	config      PipelineConfig
	progress    ProgressReporter
	log         zerolog.Logger
}

// NewPipeline assembles the orchestrator from its stages
func NewPipeline(extractor *Extractor, summarizer *Summarizer, synthesizer *Synthesizer,
	evaluator *Evaluator, prioritizer *Prioritizer, config PipelineConfig,
	progress ProgressReporter, log zerolog.Logger) *Pipeline {
	if progress == nil {
		progress = noopProgress{}
	}
	return &Pipeline{
		extractor:   extractor,
		summarizer:  summarizer,
		synthesizer: synthesizer,
		evaluator:   evaluator,
		prioritizer: prioritizer,
		config:      config,
		progress:    progress,
		log:         log,
	}
}

// Run executes the full pipeline for one video. The returned result is
// complete even when stages failed or were skipped; the error is non-nil
// only for the fatal metadata path or a canceled context.
func (p *Pipeline) Run(ctx context.Context, ref VideoReference) (*AnalysisResult, error) {
	started := time.Now()
	result := &AnalysisResult{}

	// Metadata is the only fatal step: without it there is nothing to report.
	p.progress.StepStarted(StepMetadata)
	metaStart := time.Now()
	metaCtx := ctx
	if p.config.StageTimeout > 0 {
		var cancel context.CancelFunc
		metaCtx, cancel = context.WithTimeout(ctx, p.config.StageTimeout)
		defer cancel()
	}
	metadata, err := p.extractor.Metadata(metaCtx, ref)
	if err != nil {
		// Fatal: no envelope is produced, the run reports a single error
		p.progress.StepFinished(ProcessingStepRecord{
			Step:    StepMetadata,
			Status:  StepFailed,
			Elapsed: time.Since(metaStart),
			Err:     err.Error(),
		})
		return nil, err
	}
	result.Metadata = metadata
	p.record(result, ProcessingStepRecord{
		Step:    StepMetadata,
		Status:  StepSuccess,
		Elapsed: time.Since(metaStart),
		Detail:  metadata.Title,
	})

	p.runExtraction(ctx, ref, result)
	if err := ctx.Err(); err != nil {
		result.TotalElapsed = time.Since(started)
		return result, err
	}

	p.runSummaries(ctx, result)
	if err := ctx.Err(); err != nil {
		result.TotalElapsed = time.Since(started)
		return result, err
	}

	p.runStep(ctx, result, StepSynthesis,
		decide(p.config.EnableSynthesis, result.TranscriptSummary != nil || result.CommentsSummary != nil),
		func(ctx context.Context) (string, error) {
			synthesis, err := p.synthesizer.Synthesize(ctx, result.TranscriptSummary, result.CommentsSummary)
			if err != nil {
				return "", err
			}
			result.Synthesis = synthesis
			return synthesis.Headline, nil
		})

	p.runStep(ctx, result, StepEvaluation,
		decide(p.config.EnableEvaluation, result.Synthesis != nil),
		func(ctx context.Context) (string, error) {
			assessment, err := p.evaluator.Evaluate(ctx, result.Synthesis, result.TranscriptSummary, result.CommentsSummary)
			if err != nil {
				return "", err
			}
			result.Assessment = assessment
			return fmt.Sprintf("%d standards scored", NumStandards), nil
		})

	p.runStep(ctx, result, StepPrioritization,
		decide(p.config.EnablePrioritization, result.Assessment != nil),
		func(ctx context.Context) (string, error) {
			questions, err := p.prioritizer.Prioritize(ctx, result.Synthesis, result.Assessment)
			if err != nil {
				return "", err
			}
			result.Assessment.SelectedQuestions = questions
			return fmt.Sprintf("%d questions selected", len(questions)), nil
		})

	result.TotalElapsed = time.Since(started)
	return result, ctx.Err()
}

// runExtraction fetches the transcript and comments tracks
func (p *Pipeline) runExtraction(ctx context.Context, ref VideoReference, result *AnalysisResult) {
	p.runStep(ctx, result, StepTranscript,
		decide(p.config.EnableTranscript, true),
		func(ctx context.Context) (string, error) {
			doc, err := p.extractor.Transcript(ctx, ref)
			if err != nil {
				return "", err
			}
			result.Transcript = doc
			return fmt.Sprintf("%d words via %s", doc.WordCount, doc.Source), nil
		})

	p.runStep(ctx, result, StepComments,
		decide(p.config.EnableComments, true),
		func(ctx context.Context) (string, error) {
			set, err := p.extractor.Comments(ctx, ref, p.config.MaxComments, p.config.MaxCommentWords)
			if err != nil {
				return "", err
			}
			result.Comments = set
			if len(set.Comments) == 0 {
				return "", errNoData
			}
			return fmt.Sprintf("%d comments, %d words", len(set.Comments), set.TotalWordCount), nil
		})
}

// runSummaries runs the two track summaries concurrently. Records are
// appended transcript-first regardless of completion order.
func (p *Pipeline) runSummaries(ctx context.Context, result *AnalysisResult) {
	transcriptDecision := decide(p.config.EnableTranscriptProcessing, result.Transcript != nil)
	commentsDecision := decide(p.config.EnableCommentsProcessing,
		result.Comments != nil && len(result.Comments.Comments) > 0)

	var transcriptRecord, commentsRecord ProcessingStepRecord
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		transcriptRecord = p.execStep(gctx, StepTranscriptSummary, transcriptDecision,
			func(ctx context.Context) (string, error) {
				summary, err := p.summarizer.SummarizeTranscript(ctx, result.Metadata, result.Transcript)
				if err != nil {
					return "", err
				}
				result.TranscriptSummary = summary
				return fmt.Sprintf("%d words summarized", summary.SourceWordCount), nil
			})
		return nil
	})
	g.Go(func() error {
		commentsRecord = p.execStep(gctx, StepCommentsSummary, commentsDecision,
			func(ctx context.Context) (string, error) {
				summary, err := p.summarizer.SummarizeComments(ctx, result.Comments)
				if err != nil {
					return "", err
				}
				result.CommentsSummary = summary
				return fmt.Sprintf("%d words summarized", summary.SourceWordCount), nil
			})
		return nil
	})
	_ = g.Wait()

	result.Steps = append(result.Steps, transcriptRecord, commentsRecord)
}

// runStep executes one step inline and appends its record
func (p *Pipeline) runStep(ctx context.Context, result *AnalysisResult, name string,
	d decision, fn func(context.Context) (string, error)) {
	result.Steps = append(result.Steps, p.execStep(ctx, name, d, fn))
}

// execStep handles the skip decisions, timing, progress events, and
// error capture for one step
func (p *Pipeline) execStep(ctx context.Context, name string, d decision,
	fn func(context.Context) (string, error)) ProcessingStepRecord {
	if d != decisionRun {
		record := ProcessingStepRecord{Step: name, Status: d.status()}
		p.log.Debug().Str("step", name).Str("status", record.Status.String()).Msg("step skipped")
		p.progress.StepFinished(record)
		return record
	}

	if p.config.StageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.StageTimeout)
		defer cancel()
	}

	p.progress.StepStarted(name)
	start := time.Now()
	detail, err := fn(ctx)
	record := ProcessingStepRecord{
		Step:    name,
		Elapsed: time.Since(start),
		Detail:  detail,
	}
	switch {
	case errors.Is(err, errNoData):
		record.Status = StepSkippedNoInput
		record.Detail = ""
		p.log.Debug().Str("step", name).Msg("step found no data")
	case err != nil:
		record.Status = StepFailed
		record.Err = err.Error()
		record.Detail = ""
		p.log.Warn().Err(err).Str("step", name).Msg("step failed")
	default:
		record.Status = StepSuccess
		p.log.Info().
			Str("step", name).
			Dur("elapsed", record.Elapsed).
			Str("detail", detail).
			Msg("step completed")
	}
	p.progress.StepFinished(record)
	return record
}

// record appends a step record and emits the progress event
func (p *Pipeline) record(result *AnalysisResult, rec ProcessingStepRecord) {
	p.progress.StepFinished(rec)
	result.Steps = append(result.Steps, rec)
}
