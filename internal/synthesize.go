package internal

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// Synthesizer compresses the available track summaries into a headline
// and bullets
type Synthesizer struct {
	backend TextGenerator
	config  PipelineConfig
	log     zerolog.Logger
}

// NewSynthesizer creates the synthesis stage
func NewSynthesizer(backend TextGenerator, config PipelineConfig, log zerolog.Logger) *Synthesizer {
	return &Synthesizer{backend: backend, config: config, log: log}
}

// Synthesize merges whatever summaries exist into a single compressed
// result. At least one summary must be present.
func (s *Synthesizer) Synthesize(ctx context.Context, transcriptSummary, commentsSummary *TrackSummary) (*SynthesisResult, error) {
	if transcriptSummary == nil && commentsSummary == nil {
		return nil, fmt.Errorf("no track summaries to synthesize")
	}

	var transcriptText, commentsText string
	if transcriptSummary != nil {
		transcriptText = transcriptSummary.Summary
	}
	if commentsSummary != nil {
		commentsText = commentsSummary.Summary
	}

	prompt := buildCompressionPrompt(transcriptText, commentsText)
	text, err := generateWithRetry(ctx, s.backend, prompt, GenerateParams{
		Model:       s.config.GeminiModel,
		Temperature: s.config.GeminiTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesizing summaries: %w", err)
	}

	result := parseSynthesis(text)
	if result.Headline == "" && len(result.Bullets) == 0 {
		return nil, fmt.Errorf("synthesis produced no usable content")
	}
	s.log.Debug().
		Str("headline", result.Headline).
		Int("bullets", len(result.Bullets)).
		Msg("summaries synthesized")
	return result, nil
}

var (
	headingPattern = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
	boldPattern    = regexp.MustCompile(`^\*\*(.+)\*\*$`)
	bulletPattern  = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+(.+)$`)
)

// parseSynthesis splits the model's markdown into headline and bullets.
// The first heading or bold line becomes the headline; if neither
// appears, the first non-bullet line does.
func parseSynthesis(text string) *SynthesisResult {
	result := &SynthesisResult{Raw: strings.TrimSpace(text)}

	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			result.Bullets = append(result.Bullets, strings.TrimSpace(m[1]))
			continue
		}
		if result.Headline != "" {
			continue
		}
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			result.Headline = strings.TrimSpace(m[1])
		} else if m := boldPattern.FindStringSubmatch(line); m != nil {
			result.Headline = strings.TrimSpace(m[1])
		} else {
			result.Headline = line
		}
	}

	return result
}

// extractBullets collects markdown bullet lines from model output
func extractBullets(text string) []string {
	var bullets []string
	for line := range strings.Lines(text) {
		if m := bulletPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			bullets = append(bullets, strings.TrimSpace(m[1]))
		}
	}
	return bullets
}
