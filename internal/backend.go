package internal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// GenerateParams are the per-call model parameters for a text generation
// request
type GenerateParams struct {
	Model       string
	Temperature float64
	JSONOutput  bool
}

// TextGenerator is the uniform capability both generative backends expose:
// complete a prompt, optionally returning a JSON document. Stages depend on
// this interface only, so backends are substitutable and tests inject fakes.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string, params GenerateParams) (string, error)
}

// noBackend stands in for a generative backend when every stage that
// would call it is disabled, so wiring never demands an API key the run
// will not use. Any call reaching it is reported as an error.
type noBackend struct{}

func (noBackend) Name() string { return "none" }

func (noBackend) Generate(context.Context, string, GenerateParams) (string, error) {
	return "", errors.New("no generative backend configured")
}

// generateWithRetry wraps a backend call with bounded exponential backoff.
// Transient failures (timeouts, rate limits, server errors) are retried;
// a canceled context is not.
func generateWithRetry(ctx context.Context, gen TextGenerator, prompt string, params GenerateParams) (string, error) {
	var out string
	backoff := retry.WithMaxRetries(2, retry.NewExponential(2*time.Second))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		text, err := gen.Generate(ctx, prompt, params)
		if err != nil {
			if isTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		out = text
		return nil
	})
	return out, err
}

// isTransient reports whether a backend error is worth retrying
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"rate limit", "429", "timeout", "temporarily", "unavailable", "500", "502", "503", "overloaded"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// stripJSONFences removes a markdown code fence around a JSON payload,
// which some models emit despite being asked for bare JSON
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
