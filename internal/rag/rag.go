package rag

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pdfqa/internal/config"
	"pdfqa/internal/llmservice"
	"pdfqa/internal/models"
)

// ErrGeneration means the answer-generation capability failed.
var ErrGeneration = errors.New("answer generation failed")

// Generator produces an answer to a question grounded on the given context
// results. Implementations truncate the context to their configured top-k and
// report the truncated list back in the Answer.
type Generator interface {
	Generate(ctx context.Context, question string, contexts []models.RetrievalResult) (*models.Answer, error)
}

// BuildContext joins the text of the given results with single spaces, in
// their given order.
func BuildContext(contexts []models.RetrievalResult) string {
	parts := make([]string, len(contexts))
	for i, c := range contexts {
		parts[i] = c.Content
	}
	return strings.Join(parts, " ")
}

// BuildPrompt renders the grounding prompt for the given question and context.
func BuildPrompt(question string, contexts []models.RetrievalResult) string {
	return fmt.Sprintf(models.PromptTemplate, BuildContext(contexts), question)
}

func truncateContext(contexts []models.RetrievalResult, topK int) []models.RetrievalResult {
	if topK > 0 && topK < len(contexts) {
		return contexts[:topK]
	}
	return contexts
}

// OpenRouterGenerator streams chat completions from an OpenRouter-compatible
// endpoint, concatenating the delta fragments into the final answer.
type OpenRouterGenerator struct {
	llmConfig *config.LLMConfig
	genConfig *config.GenerationConfig
	topK      int
	client    *http.Client
}

func NewOpenRouterGenerator(llmConfig *config.LLMConfig, genConfig *config.GenerationConfig, topK int) *OpenRouterGenerator {
	return &OpenRouterGenerator{
		llmConfig: llmConfig,
		genConfig: genConfig,
		topK:      topK,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *OpenRouterGenerator) Generate(ctx context.Context, question string, contexts []models.RetrievalResult) (*models.Answer, error) {
	offered := truncateContext(contexts, g.topK)
	prompt := BuildPrompt(question, offered)

	payload := struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Temperature float64 `json:"temperature"`
		TopP        float64 `json:"top_p"`
		MaxTokens   int     `json:"max_tokens"`
		Stream      bool    `json:"stream"`
	}{
		Model: g.llmConfig.Model,
		Messages: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			{Role: "user", Content: prompt},
		},
		Temperature: g.genConfig.Temperature,
		TopP:        g.genConfig.TopP,
		MaxTokens:   g.genConfig.MaxOutputTokens,
		Stream:      true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.llmConfig.BaseURL+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	req.Header.Set("Authorization", g.llmConfig.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: request failed: %d, %s", ErrGeneration, resp.StatusCode, string(body))
	}

	var response strings.Builder
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if line == "data: [DONE]" {
			break
		}
		if strings.HasPrefix(line, "data: ") {
			data := strings.TrimPrefix(line, "data: ")
			var chunk struct {
				Choices []struct {
					Delta struct {
						Content string `json:"content"`
					} `json:"delta"`
				} `json:"choices"`
			}
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				response.WriteString(chunk.Choices[0].Delta.Content)
			}
		}
	}

	return &models.Answer{
		Content: strings.TrimSpace(response.String()),
		Context: offered,
	}, nil
}

// LangchainGenerator drives the same kind of endpoint through langchaingo's
// streaming client instead of the hand-rolled SSE reader.
type LangchainGenerator struct {
	llmConfig *config.LLMConfig
	genConfig *config.GenerationConfig
	topK      int
}

func NewLangchainGenerator(llmConfig *config.LLMConfig, genConfig *config.GenerationConfig, topK int) *LangchainGenerator {
	return &LangchainGenerator{llmConfig: llmConfig, genConfig: genConfig, topK: topK}
}

func (g *LangchainGenerator) Generate(ctx context.Context, question string, contexts []models.RetrievalResult) (*models.Answer, error) {
	offered := truncateContext(contexts, g.topK)
	prompt := BuildPrompt(question, offered)

	answer, err := llmservice.GenerateStreaming(ctx, g.llmConfig, g.genConfig, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return &models.Answer{
		Content: strings.TrimSpace(answer),
		Context: offered,
	}, nil
}
