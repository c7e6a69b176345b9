package internal

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssessment_Valid(t *testing.T) {
	assessment, err := parseAssessment(validEvaluationJSON())
	require.NoError(t, err)

	for i, standard := range AllStandards() {
		score := assessment.Scores[i]
		assert.Equal(t, standard, score.Standard)
		assert.Equal(t, standard.String(), score.Name)
		assert.GreaterOrEqual(t, score.Rating, 1)
		assert.LessOrEqual(t, score.Rating, 10)
		assert.NotEmpty(t, score.FollowupQuestions)
	}
}

func TestParseAssessment_FencedJSON(t *testing.T) {
	fenced := "```json\n" + validEvaluationJSON() + "\n```"
	_, err := parseAssessment(fenced)
	require.NoError(t, err)
}

func TestParseAssessment_ToleratesAlternateNames(t *testing.T) {
	payload := strings.ReplaceAll(validEvaluationJSON(), `"Logic"`, `"Logicalness"`)
	payload = strings.ReplaceAll(payload, `"Fairness"`, `"Fair Thinking"`)

	assessment, err := parseAssessment(payload)
	require.NoError(t, err)
	assert.Equal(t, "Logic", assessment.Scores[StandardLogic].Name)
	assert.Equal(t, "Fairness", assessment.Scores[StandardFairness].Name)
}

func TestParseAssessment_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"not json", "the video was fine", "decoding evaluation JSON"},
		{"duplicate standard", strings.Replace(validEvaluationJSON(), `"name": "Depth"`, `"name": "Clarity"`, 1), "duplicate standard"},
		{"unknown standard", strings.Replace(validEvaluationJSON(), `"name": "Depth"`, `"name": "Vibes"`, 1), "unknown standard"},
		{"rating too high", strings.Replace(validEvaluationJSON(), `"rating": 5`, `"rating": 11`, 1), "out of range"},
		{"rating zero", strings.Replace(validEvaluationJSON(), `"rating": 5`, `"rating": 0`, 1), "out of range"},
		{"empty standards", `{"standards": []}`, "missing standard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAssessment(tt.payload)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEvaluator_StrictRetryAfterInvalidResponse(t *testing.T) {
	backend := &fakeGenerator{responses: []string{"garbage", validEvaluationJSON()}}
	evaluator := NewEvaluator(backend, DefaultPipelineConfig(), zerolog.Nop())

	synthesis := &SynthesisResult{Headline: "Headline", Raw: "# Headline\n- point"}
	assessment, err := evaluator.Evaluate(context.Background(), synthesis, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, assessment)

	require.Equal(t, 2, backend.callCount())
	assert.NotContains(t, backend.prompts[0], "rejected")
	assert.Contains(t, backend.prompts[1], "rejected")
}

func TestEvaluator_FailsAfterSecondInvalidResponse(t *testing.T) {
	backend := &fakeGenerator{responses: []string{"garbage", "more garbage"}}
	evaluator := NewEvaluator(backend, DefaultPipelineConfig(), zerolog.Nop())

	_, err := evaluator.Evaluate(context.Background(), &SynthesisResult{Raw: "x"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after retry")
	assert.Equal(t, 2, backend.callCount())
}

func TestEvaluator_RequiresSynthesis(t *testing.T) {
	evaluator := NewEvaluator(&fakeGenerator{}, DefaultPipelineConfig(), zerolog.Nop())
	_, err := evaluator.Evaluate(context.Background(), nil, nil, nil)
	require.Error(t, err)
}
