package internal

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSynthesis_MarkdownHeading(t *testing.T) {
	result := parseSynthesis("# Compounding Beats Market Timing\n\n- start early\n- fees matter\n")
	assert.Equal(t, "Compounding Beats Market Timing", result.Headline)
	assert.Equal(t, []string{"start early", "fees matter"}, result.Bullets)
	assert.Contains(t, result.Raw, "Compounding")
}

func TestParseSynthesis_BoldHeadline(t *testing.T) {
	result := parseSynthesis("**Compounding Beats Market Timing**\n\n* start early\n")
	assert.Equal(t, "Compounding Beats Market Timing", result.Headline)
	assert.Equal(t, []string{"start early"}, result.Bullets)
}

func TestParseSynthesis_PlainFirstLine(t *testing.T) {
	result := parseSynthesis("Compounding beats market timing\n\n1. start early\n2) fees matter\n")
	assert.Equal(t, "Compounding beats market timing", result.Headline)
	assert.Equal(t, []string{"start early", "fees matter"}, result.Bullets)
}

func TestSynthesizer_RequiresAtLeastOneSummary(t *testing.T) {
	synthesizer := NewSynthesizer(&fakeGenerator{}, DefaultPipelineConfig(), zerolog.Nop())
	_, err := synthesizer.Synthesize(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestSynthesizer_SingleTrack(t *testing.T) {
	backend := &fakeGenerator{responses: []string{"# Headline Here\n- only insight"}}
	synthesizer := NewSynthesizer(backend, DefaultPipelineConfig(), zerolog.Nop())

	summary := &TrackSummary{Track: TrackComments, Summary: "viewers disagreed about fees"}
	result, err := synthesizer.Synthesize(context.Background(), nil, summary)
	require.NoError(t, err)
	assert.Equal(t, "Headline Here", result.Headline)

	// The absent track is marked as such in the prompt
	require.Equal(t, 1, backend.callCount())
	assert.Contains(t, backend.prompts[0], "No transcript summary available.")
	assert.Contains(t, backend.prompts[0], "viewers disagreed about fees")
}

func TestSynthesizer_RejectsEmptyOutput(t *testing.T) {
	backend := &fakeGenerator{responses: []string{"   \n  "}}
	synthesizer := NewSynthesizer(backend, DefaultPipelineConfig(), zerolog.Nop())

	_, err := synthesizer.Synthesize(context.Background(), &TrackSummary{Summary: "x"}, nil)
	require.Error(t, err)
}

func TestExtractBullets(t *testing.T) {
	text := "Intro line\n- first\n* second\n• third\n1. fourth\nnot a bullet\n"
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, extractBullets(text))
	assert.Empty(t, extractBullets("no bullets here"))
}
