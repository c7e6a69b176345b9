package internal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Evaluator scores the synthesized content against the eight
// critical-thinking standards
type Evaluator struct {
	backend TextGenerator
	config  PipelineConfig
	log     zerolog.Logger
}

// NewEvaluator creates the evaluation stage
func NewEvaluator(backend TextGenerator, config PipelineConfig, log zerolog.Logger) *Evaluator {
	return &Evaluator{backend: backend, config: config, log: log}
}

type standardResponse struct {
	Name              string   `json:"name"`
	Justification     string   `json:"justification"`
	Rating            int      `json:"rating"`
	FollowupQuestions []string `json:"followup_questions"`
}

type evaluationResponse struct {
	Standards []standardResponse `json:"standards"`
}

// Evaluate assesses the synthesis against all eight standards. A
// response missing standards or with ratings outside 1..10 is rejected;
// one stricter retry is attempted before the stage fails.
func (e *Evaluator) Evaluate(ctx context.Context, synthesis *SynthesisResult, transcriptSummary, commentsSummary *TrackSummary) (*CriticalAssessment, error) {
	if synthesis == nil {
		return nil, fmt.Errorf("no synthesis to evaluate")
	}

	var transcriptText, commentsText string
	if transcriptSummary != nil {
		transcriptText = transcriptSummary.Summary
	}
	if commentsSummary != nil {
		commentsText = commentsSummary.Summary
	}

	model, temperature := e.modelParams()
	var lastErr error
	for _, strict := range []bool{false, true} {
		prompt := buildEvaluationPrompt(synthesis, transcriptText, commentsText, strict)
		text, err := generateWithRetry(ctx, e.backend, prompt, GenerateParams{
			Model:       model,
			Temperature: temperature,
			JSONOutput:  true,
		})
		if err != nil {
			return nil, fmt.Errorf("evaluating content: %w", err)
		}

		assessment, err := parseAssessment(text)
		if err != nil {
			e.log.Warn().Err(err).Bool("strict_retry", strict).Msg("evaluation response rejected")
			lastErr = err
			continue
		}
		return assessment, nil
	}
	return nil, fmt.Errorf("evaluation response invalid after retry: %w", lastErr)
}

func (e *Evaluator) modelParams() (string, float64) {
	if e.config.EvaluationBackend == EvaluationBackendOpenAI {
		return e.config.OpenAIModel, e.config.OpenAITemperature
	}
	return e.config.GeminiModel, e.config.GeminiTemperature
}

// parseAssessment decodes and validates an evaluation response. All
// eight standards must be present exactly once with ratings in 1..10.
func parseAssessment(text string) (*CriticalAssessment, error) {
	var resp evaluationResponse
	if err := json.Unmarshal([]byte(stripJSONFences(text)), &resp); err != nil {
		return nil, fmt.Errorf("decoding evaluation JSON: %w", err)
	}

	assessment := &CriticalAssessment{}
	var seen [NumStandards]bool
	for _, entry := range resp.Standards {
		standard, ok := StandardFromName(entry.Name)
		if !ok {
			return nil, fmt.Errorf("unknown standard %q", entry.Name)
		}
		if seen[standard] {
			return nil, fmt.Errorf("duplicate standard %q", entry.Name)
		}
		if entry.Rating < 1 || entry.Rating > 10 {
			return nil, fmt.Errorf("rating %d for %s out of range", entry.Rating, standard)
		}
		seen[standard] = true
		assessment.Scores[standard] = StandardScore{
			Standard:          standard,
			Name:              standard.String(),
			Rating:            entry.Rating,
			Justification:     entry.Justification,
			FollowupQuestions: entry.FollowupQuestions,
		}
	}

	for _, standard := range AllStandards() {
		if !seen[standard] {
			return nil, fmt.Errorf("missing standard %s", standard)
		}
	}
	return assessment, nil
}
