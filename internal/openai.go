package internal

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// summarySystemPrompt frames every summarization request
const summarySystemPrompt = "You are a creative philosopher technologist. You understand process, people, tools and techniques. " +
	"Focus on communication style, identify and reduce redundancy, focus on novelty and relevance. " +
	"Structure communication and organize content logically."

// OpenAIClient wraps the official OpenAI Go SDK as a TextGenerator and
// Whisper transcriber
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client}
}

// Name identifies the backend in logs and step records
func (c *OpenAIClient) Name() string { return "openai" }

// Generate completes a prompt with a chat completion
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(summarySystemPrompt),
		openai.UserMessage(prompt),
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(params.Model),
		Messages:    messages,
		Temperature: openai.Float(params.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	if params.JSONOutput {
		content = stripJSONFences(content)
	}
	return content, nil
}

// Transcribe transcribes an audio file with the Whisper API
func (c *OpenAIClient) Transcribe(ctx context.Context, audioFile string) (string, error) {
	file, err := os.Open(audioFile)
	if err != nil {
		return "", fmt.Errorf("opening audio file: %w", err)
	}
	defer file.Close()

	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}
	return resp.Text, nil
}
