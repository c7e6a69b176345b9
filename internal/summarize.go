package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// commentsTemperature is fixed for the comments track; comment soup
// needs a cooler head than prose
const commentsTemperature = 0.2

// Summarizer produces one independent summary per content track
type Summarizer struct {
	backend TextGenerator
	config  PipelineConfig
	log     zerolog.Logger
}

// NewSummarizer creates the per-track summarization stage
func NewSummarizer(backend TextGenerator, config PipelineConfig, log zerolog.Logger) *Summarizer {
	return &Summarizer{backend: backend, config: config, log: log}
}

// SummarizeTranscript condenses the transcript according to the
// configured instruction
func (s *Summarizer) SummarizeTranscript(ctx context.Context, metadata VideoMetadata, transcript *TranscriptDocument) (*TrackSummary, error) {
	if transcript == nil || transcript.WordCount == 0 {
		return nil, fmt.Errorf("no transcript to summarize")
	}

	prompt := buildTranscriptPrompt(s.config.Instruction, metadata, transcript)
	text, err := generateWithRetry(ctx, s.backend, prompt, GenerateParams{
		Model:       s.config.OpenAIModel,
		Temperature: s.config.OpenAITemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("summarizing transcript: %w", err)
	}

	summary := &TrackSummary{
		Track:           TrackTranscript,
		Summary:         strings.TrimSpace(text),
		KeyPoints:       extractBullets(text),
		SourceWordCount: transcript.WordCount,
	}
	s.log.Debug().
		Str("track", summary.Track.String()).
		Int("source_words", summary.SourceWordCount).
		Int("summary_words", CountWords(summary.Summary)).
		Msg("track summarized")
	return summary, nil
}

// SummarizeComments condenses the comment set into prioritized insights
func (s *Summarizer) SummarizeComments(ctx context.Context, comments *CommentSet) (*TrackSummary, error) {
	if comments == nil || len(comments.Comments) == 0 {
		return nil, fmt.Errorf("no comments to summarize")
	}

	prompt := buildCommentsPrompt(comments)
	text, err := generateWithRetry(ctx, s.backend, prompt, GenerateParams{
		Model:       s.config.OpenAIModel,
		Temperature: commentsTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("summarizing comments: %w", err)
	}

	summary := &TrackSummary{
		Track:           TrackComments,
		Summary:         strings.TrimSpace(text),
		KeyPoints:       extractBullets(text),
		SourceWordCount: comments.TotalWordCount,
	}
	s.log.Debug().
		Str("track", summary.Track.String()).
		Int("source_words", summary.SourceWordCount).
		Int("summary_words", CountWords(summary.Summary)).
		Msg("track summarized")
	return summary, nil
}
