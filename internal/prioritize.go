package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Prioritizer selects the most valuable follow-up questions from the
// assessment's candidates
type Prioritizer struct {
	backend TextGenerator
	config  PipelineConfig
	log     zerolog.Logger
}

// NewPrioritizer creates the prioritization stage
func NewPrioritizer(backend TextGenerator, config PipelineConfig, log zerolog.Logger) *Prioritizer {
	return &Prioritizer{backend: backend, config: config, log: log}
}

// Prioritize asks the backend to rank the candidate questions and caps
// the result at the configured count. An assessment with no follow-up
// questions yields an empty selection, not an error. An empty ranking
// response is retried once before the stage fails.
func (p *Prioritizer) Prioritize(ctx context.Context, synthesis *SynthesisResult, assessment *CriticalAssessment) ([]string, error) {
	if assessment == nil {
		return nil, fmt.Errorf("no assessment to prioritize from")
	}

	candidates := collectCandidates(assessment)
	if len(candidates) == 0 {
		p.log.Debug().Msg("assessment produced no follow-up questions")
		return []string{}, nil
	}
	n := p.config.NumQuestions
	if n <= 0 {
		return []string{}, nil
	}
	if len(candidates) <= n {
		return candidates, nil
	}

	prompt := buildPrioritizationPrompt(synthesis, candidates, n)
	model, temperature := p.modelParams()

	for attempt := 0; attempt < 2; attempt++ {
		text, err := generateWithRetry(ctx, p.backend, prompt, GenerateParams{
			Model:       model,
			Temperature: temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("ranking questions: %w", err)
		}
		selected := parseQuestionList(text, candidates, n)
		if len(selected) > 0 {
			return selected, nil
		}
		p.log.Warn().Int("attempt", attempt+1).Msg("question ranking returned nothing usable")
	}
	return nil, fmt.Errorf("question ranking produced no questions")
}

func (p *Prioritizer) modelParams() (string, float64) {
	if p.config.EvaluationBackend == EvaluationBackendOpenAI {
		return p.config.OpenAIModel, p.config.OpenAITemperature
	}
	return p.config.GeminiModel, p.config.GeminiTemperature
}

// collectCandidates flattens follow-up questions in standard order,
// dropping blanks and case-insensitive duplicates
func collectCandidates(assessment *CriticalAssessment) []string {
	var candidates []string
	seen := map[string]bool{}
	for _, score := range assessment.Scores {
		for _, question := range score.FollowupQuestions {
			question = strings.TrimSpace(question)
			if question == "" {
				continue
			}
			key := strings.ToLower(question)
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, question)
		}
	}
	return candidates
}

// parseQuestionList extracts up to n questions from a ranked response,
// one per line, stripping any numbering or bullet markers the model
// added anyway. Lines are matched back to the candidate list so chatty
// preamble never lands in the selection; a line matching no candidate
// is kept only when it reads as a question.
func parseQuestionList(text string, candidates []string, n int) []string {
	canonical := make(map[string]string, len(candidates))
	for _, candidate := range candidates {
		canonical[strings.ToLower(candidate)] = candidate
	}

	var questions []string
	seen := map[string]bool{}
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			line = strings.TrimSpace(m[1])
		}
		if line == "" {
			continue
		}
		if match, ok := canonical[strings.ToLower(line)]; ok {
			line = match
		} else if !strings.HasSuffix(line, "?") {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		questions = append(questions, line)
		if len(questions) == n {
			break
		}
	}
	return questions
}
