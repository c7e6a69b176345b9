package internal

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizer_Transcript(t *testing.T) {
	backend := &fakeGenerator{responses: []string{"- compounding grows money\n- fees eat returns"}}
	config := DefaultPipelineConfig()
	config.Instruction = "Summarize the core claims."
	summarizer := NewSummarizer(backend, config, zerolog.Nop())

	metadata := VideoMetadata{Title: "Compound Interest Explained", Channel: "FinanceTube"}
	summary, err := summarizer.SummarizeTranscript(context.Background(), metadata, testTranscript())
	require.NoError(t, err)

	assert.Equal(t, TrackTranscript, summary.Track)
	assert.Equal(t, testTranscript().WordCount, summary.SourceWordCount)
	assert.Len(t, summary.KeyPoints, 2)

	require.Equal(t, 1, backend.callCount())
	prompt := backend.prompts[0]
	assert.Contains(t, prompt, "Summarize the core claims.")
	assert.Contains(t, prompt, "Compound Interest Explained")
	assert.Contains(t, prompt, "today we discuss compound interest")
}

func TestSummarizer_TranscriptRequiresInput(t *testing.T) {
	summarizer := NewSummarizer(&fakeGenerator{}, DefaultPipelineConfig(), zerolog.Nop())

	_, err := summarizer.SummarizeTranscript(context.Background(), VideoMetadata{}, nil)
	require.Error(t, err)
	_, err = summarizer.SummarizeTranscript(context.Background(), VideoMetadata{}, &TranscriptDocument{})
	require.Error(t, err)
}

func TestSummarizer_Comments(t *testing.T) {
	backend := &fakeGenerator{responses: []string{"- fees were the hot topic"}}
	summarizer := NewSummarizer(backend, DefaultPipelineConfig(), zerolog.Nop())

	comments := &CommentSet{Comments: testCommentPage().Comments, TotalWordCount: 11}
	summary, err := summarizer.SummarizeComments(context.Background(), comments)
	require.NoError(t, err)

	assert.Equal(t, TrackComments, summary.Track)
	assert.Equal(t, 11, summary.SourceWordCount)

	prompt := backend.prompts[0]
	assert.Contains(t, prompt, "[40 likes] alice:")
	assert.Contains(t, prompt, "rule of 72")
}

func TestSummarizer_CommentsRequireInput(t *testing.T) {
	summarizer := NewSummarizer(&fakeGenerator{}, DefaultPipelineConfig(), zerolog.Nop())

	_, err := summarizer.SummarizeComments(context.Background(), nil)
	require.Error(t, err)
	_, err = summarizer.SummarizeComments(context.Background(), &CommentSet{})
	require.Error(t, err)
}
