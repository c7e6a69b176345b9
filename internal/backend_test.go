package internal

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyGenerator fails a fixed number of times before succeeding
type flakyGenerator struct {
	failures int
	calls    int
	err      error
}

func (f *flakyGenerator) Name() string { return "flaky" }

func (f *flakyGenerator) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.err
	}
	return "ok", nil
}

func TestGenerateWithRetry_RecoversFromTransientError(t *testing.T) {
	gen := &flakyGenerator{failures: 1, err: fmt.Errorf("429 rate limit exceeded")}

	out, err := generateWithRetry(context.Background(), gen, "prompt", GenerateParams{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, gen.calls)
}

func TestGenerateWithRetry_PermanentErrorFailsFast(t *testing.T) {
	gen := &flakyGenerator{failures: 5, err: fmt.Errorf("invalid api key")}

	_, err := generateWithRetry(context.Background(), gen, "prompt", GenerateParams{})
	require.Error(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errors.New("429 too many requests")))
	assert.True(t, isTransient(errors.New("service temporarily unavailable")))
	assert.True(t, isTransient(errors.New("upstream 503")))
	assert.True(t, isTransient(errors.New("model overloaded")))
	assert.True(t, isTransient(context.DeadlineExceeded))
	assert.False(t, isTransient(context.Canceled))
	assert.False(t, isTransient(errors.New("invalid request")))
}

func TestStripJSONFences(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, stripJSONFences("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripJSONFences("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripJSONFences(`{"a": 1}`))
	assert.Equal(t, `{"a": 1}`, stripJSONFences("  {\"a\": 1}  "))
}
