package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fakes shared by the package tests.

type fakeMetadata struct {
	meta VideoMetadata
	err  error
}

func (f *fakeMetadata) FetchMetadata(ctx context.Context, videoID string) (VideoMetadata, error) {
	if f.err != nil {
		return VideoMetadata{}, f.err
	}
	return f.meta, nil
}

type fakePager struct {
	pages []CommentPage
	err   error
	calls int
}

func (f *fakePager) FetchCommentPage(ctx context.Context, videoID, pageToken string, maxResults int64) (CommentPage, error) {
	if f.err != nil {
		return CommentPage{}, f.err
	}
	if f.calls >= len(f.pages) {
		return CommentPage{}, nil
	}
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

type fakeSource struct {
	name string
	doc  *TranscriptDocument
	err  error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, videoID string) (*TranscriptDocument, error) {
	return f.doc, f.err
}

// fakeGenerator replays canned responses in order, recording prompts.
// Safe for concurrent use since both summaries may call the same backend.
type fakeGenerator struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	i := len(f.prompts) - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func testTranscript() *TranscriptDocument {
	doc := &TranscriptDocument{
		Segments: []TranscriptSegment{
			{Start: 0, Duration: 5, Text: "welcome to the show"},
			{Start: 5, Duration: 5, Text: "today we discuss compound interest"},
		},
		Source: "ytdlp",
	}
	doc.WordCount = CountWords(doc.Text())
	return doc
}

func testCommentPage() CommentPage {
	return CommentPage{
		Comments: []Comment{
			{Author: "alice", Text: "great explanation of the rule of 72", LikeCount: 40},
			{Author: "bob", Text: "the fee section was missing nuance", LikeCount: 12},
		},
	}
}

func validEvaluationJSON() string {
	var entries []string
	for _, s := range AllStandards() {
		entries = append(entries, fmt.Sprintf(
			`{"name": %q, "justification": "solid on %s", "rating": %d, "followup_questions": ["How does %s hold up under scrutiny?"]}`,
			s.String(), s.String(), 5+int(s)%4, s.String()))
	}
	return `{"standards": [` + strings.Join(entries, ",") + `]}`
}

type pipelineFixture struct {
	metadata  *fakeMetadata
	pager     *fakePager
	source    *fakeSource
	summary   *fakeGenerator
	synthesis *fakeGenerator
	eval      *fakeGenerator
}

func newPipelineFixture() *pipelineFixture {
	return &pipelineFixture{
		metadata: &fakeMetadata{meta: VideoMetadata{
			VideoID: "dQw4w9WgXcQ", Title: "Compound Interest Explained", Channel: "FinanceTube",
		}},
		pager:     &fakePager{pages: []CommentPage{testCommentPage()}},
		source:    &fakeSource{name: "ytdlp", doc: testTranscript()},
		summary:   &fakeGenerator{responses: []string{"- the speaker explains compounding\n- fees erode returns"}},
		synthesis: &fakeGenerator{responses: []string{"# Compounding Beats Timing\n\n- start early\n- mind the fees"}},
		eval: &fakeGenerator{responses: []string{
			validEvaluationJSON(),
			"Which fee structures were omitted?\nHow does Accuracy hold up under scrutiny?",
		}},
	}
}

func (fx *pipelineFixture) build(config PipelineConfig) *Pipeline {
	log := zerolog.Nop()
	extractor := NewExtractor(fx.metadata, fx.pager, []TranscriptSource{fx.source}, log)
	return NewPipeline(
		extractor,
		NewSummarizer(fx.summary, config, log),
		NewSynthesizer(fx.synthesis, config, log),
		NewEvaluator(fx.eval, config, log),
		NewPrioritizer(fx.eval, config, log),
		config, nil, log,
	)
}

func stepByName(t *testing.T, result *AnalysisResult, name string) ProcessingStepRecord {
	t.Helper()
	for _, step := range result.Steps {
		if step.Step == name {
			return step
		}
	}
	t.Fatalf("no step named %q in %v", name, result.Steps)
	return ProcessingStepRecord{}
}

func TestPipeline_FullRun(t *testing.T) {
	fx := newPipelineFixture()
	pipeline := fx.build(DefaultPipelineConfig())

	result, err := pipeline.Run(context.Background(), VideoReference{ID: "dQw4w9WgXcQ"})
	require.NoError(t, err)

	wantOrder := []string{
		StepMetadata, StepTranscript, StepComments,
		StepTranscriptSummary, StepCommentsSummary,
		StepSynthesis, StepEvaluation, StepPrioritization,
	}
	require.Len(t, result.Steps, len(wantOrder))
	for i, name := range wantOrder {
		assert.Equal(t, name, result.Steps[i].Step)
		assert.Equal(t, StepSuccess, result.Steps[i].Status, "step %s", name)
	}

	assert.Equal(t, "Compound Interest Explained", result.Metadata.Title)
	require.NotNil(t, result.Transcript)
	require.NotNil(t, result.Comments)
	require.NotNil(t, result.TranscriptSummary)
	require.NotNil(t, result.CommentsSummary)
	require.NotNil(t, result.Synthesis)
	assert.Equal(t, "Compounding Beats Timing", result.Synthesis.Headline)
	require.NotNil(t, result.Assessment)
	for _, score := range result.Assessment.Scores {
		assert.GreaterOrEqual(t, score.Rating, 1)
		assert.LessOrEqual(t, score.Rating, 10)
	}
	assert.NotEmpty(t, result.Assessment.SelectedQuestions)
	assert.LessOrEqual(t, len(result.Assessment.SelectedQuestions), DefaultPipelineConfig().NumQuestions)

	succeeded, total := result.StepCounts()
	assert.Equal(t, total, succeeded)
}

func TestPipeline_MetadataFailureAborts(t *testing.T) {
	fx := newPipelineFixture()
	fx.metadata.err = fmt.Errorf("quota exceeded")
	pipeline := fx.build(DefaultPipelineConfig())

	result, err := pipeline.Run(context.Background(), VideoReference{ID: "dQw4w9WgXcQ"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	// No partial envelope on the fatal path
	assert.Nil(t, result)
	assert.Zero(t, fx.summary.callCount())
}

func TestPipeline_DisabledStagesAreSkipped(t *testing.T) {
	config := DefaultPipelineConfig()
	config.EnableComments = false
	config.EnableEvaluation = false

	fx := newPipelineFixture()
	pipeline := fx.build(config)

	result, err := pipeline.Run(context.Background(), VideoReference{ID: "dQw4w9WgXcQ"})
	require.NoError(t, err)

	assert.Equal(t, StepSkippedDisabled, stepByName(t, result, StepComments).Status)
	assert.Equal(t, StepSkippedNoInput, stepByName(t, result, StepCommentsSummary).Status)
	assert.Equal(t, StepSkippedDisabled, stepByName(t, result, StepEvaluation).Status)
	assert.Equal(t, StepSkippedNoInput, stepByName(t, result, StepPrioritization).Status)

	// Synthesis still ran on the transcript summary alone
	assert.Equal(t, StepSuccess, stepByName(t, result, StepSynthesis).Status)
	assert.Nil(t, result.Assessment)
}

func TestPipeline_TranscriptFailureDegrades(t *testing.T) {
	fx := newPipelineFixture()
	fx.source.doc = nil
	fx.source.err = fmt.Errorf("no captions")
	pipeline := fx.build(DefaultPipelineConfig())

	result, err := pipeline.Run(context.Background(), VideoReference{ID: "dQw4w9WgXcQ"})
	require.NoError(t, err)

	assert.Equal(t, StepFailed, stepByName(t, result, StepTranscript).Status)
	assert.Equal(t, StepSkippedNoInput, stepByName(t, result, StepTranscriptSummary).Status)
	assert.Nil(t, result.TranscriptSummary)

	// Comments track carries the rest of the pipeline
	assert.Equal(t, StepSuccess, stepByName(t, result, StepCommentsSummary).Status)
	assert.Equal(t, StepSuccess, stepByName(t, result, StepSynthesis).Status)
	require.NotNil(t, result.Assessment)
}

func TestPipeline_InvalidEvaluationFailsStage(t *testing.T) {
	fx := newPipelineFixture()
	fx.eval.responses = []string{"not json", "still not json"}
	pipeline := fx.build(DefaultPipelineConfig())

	result, err := pipeline.Run(context.Background(), VideoReference{ID: "dQw4w9WgXcQ"})
	require.NoError(t, err)

	assert.Equal(t, StepFailed, stepByName(t, result, StepEvaluation).Status)
	assert.Equal(t, StepSkippedNoInput, stepByName(t, result, StepPrioritization).Status)
	assert.Nil(t, result.Assessment)
	require.NotNil(t, result.Synthesis)
}

func TestPipeline_ZeroCommentsIsNoInputNotFailure(t *testing.T) {
	fx := newPipelineFixture()
	fx.pager.pages = nil
	pipeline := fx.build(DefaultPipelineConfig())

	result, err := pipeline.Run(context.Background(), VideoReference{ID: "dQw4w9WgXcQ"})
	require.NoError(t, err)

	assert.Equal(t, StepSkippedNoInput, stepByName(t, result, StepComments).Status)
	assert.Empty(t, stepByName(t, result, StepComments).Err)
	assert.Equal(t, StepSkippedNoInput, stepByName(t, result, StepCommentsSummary).Status)
	require.NotNil(t, result.Comments)
	assert.Empty(t, result.Comments.Comments)

	// The transcript track alone carries the pipeline to completion
	assert.Equal(t, StepSuccess, stepByName(t, result, StepSynthesis).Status)
	assert.Equal(t, StepSuccess, stepByName(t, result, StepPrioritization).Status)
}

func TestPipeline_BothSummariesDisabledSkipsSynthesis(t *testing.T) {
	config := DefaultPipelineConfig()
	config.EnableTranscriptProcessing = false
	config.EnableCommentsProcessing = false

	fx := newPipelineFixture()
	pipeline := fx.build(config)

	result, err := pipeline.Run(context.Background(), VideoReference{ID: "dQw4w9WgXcQ"})
	require.NoError(t, err)

	assert.Equal(t, StepSkippedDisabled, stepByName(t, result, StepTranscriptSummary).Status)
	assert.Equal(t, StepSkippedDisabled, stepByName(t, result, StepCommentsSummary).Status)
	assert.Equal(t, StepSkippedNoInput, stepByName(t, result, StepSynthesis).Status)
	assert.Zero(t, fx.synthesis.callCount())
}

func TestDecide(t *testing.T) {
	assert.Equal(t, decisionRun, decide(true, true))
	assert.Equal(t, decisionSkipNoInput, decide(true, false))
	assert.Equal(t, decisionSkipDisabled, decide(false, true))
	// Disabled wins over missing input
	assert.Equal(t, decisionSkipDisabled, decide(false, false))
}
