package llmservice

import (
	"context"
	"strings"

	"pdfqa/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// GenerateStreaming sends the prompt to an OpenAI-compatible chat endpoint
// through langchaingo, consuming the streamed fragments in order and
// returning their concatenation.
func GenerateStreaming(ctx context.Context, llmConfig *config.LLMConfig, genConfig *config.GenerationConfig, prompt string) (string, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return "", err
	}

	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	var response strings.Builder
	_, err = llm.GenerateContent(ctx, messages,
		llms.WithTemperature(genConfig.Temperature),
		llms.WithTopP(genConfig.TopP),
		llms.WithMaxTokens(genConfig.MaxOutputTokens),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			response.Write(chunk)
			return nil
		}),
	)
	if err != nil {
		return "", err
	}
	return response.String(), nil
}
