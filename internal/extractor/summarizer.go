package extractor

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const summarySystemPrompt = "You are a professional news summariser that summarises news article in 150 words in simple english language"

// maxSummaryInput bounds the article text sent to the model.
const maxSummaryInput = 16000

// LLMSummarizer generates summaries through an OpenAI-compatible chat
// completions endpoint.
type LLMSummarizer struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewLLMSummarizer(baseURL, apiKey, model string, maxTokens int) *LLMSummarizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &LLMSummarizer{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if len(text) > maxSummaryInput {
		text = text[:maxSummaryInput]
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarization request failed: %v", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from summarization model")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
