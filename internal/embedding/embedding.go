package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"pdfqa/internal/config"
	"pdfqa/internal/models"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmbedding means embedding generation failed.
var ErrEmbedding = errors.New("embedding failed")

// normEpsilon guards the L2 normalization against a near-zero vector.
const normEpsilon = 1e-10

// Client is the slice of langchaingo's embedder used by the pipeline.
type Client interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NewOpenAIEmbedder builds an embedder against an OpenAI-compatible endpoint.
func NewOpenAIEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// NewOllamaEmbedder builds an embedder against a local ollama server.
func NewOllamaEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// Adapter turns chunk text into unit-normalized embedding vectors through an
// external embedding capability.
type Adapter struct {
	client Client
}

func NewAdapter(client Client) *Adapter {
	return &Adapter{client: client}
}

// EmbedChunks embeds every chunk and L2-normalizes the results. The output is
// index-aligned with the input; an empty chunk is an error rather than being
// dropped, so callers can rely on positional correspondence.
func (a *Adapter) EmbedChunks(ctx context.Context, chunks []models.Chunk) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks to embed", ErrEmbedding)
	}
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		text := strings.TrimSpace(chunk.Content)
		if text == "" {
			return nil, fmt.Errorf("%w: chunk %d is empty", ErrEmbedding, i)
		}
		texts[i] = text
	}

	vectors, err := a.client.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", ErrEmbedding, len(vectors), len(texts))
	}
	for i := range vectors {
		vectors[i] = Normalize(vectors[i])
	}
	return vectors, nil
}

// EmbedQuery embeds a single query string and L2-normalizes the result.
func (a *Adapter) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty query text", ErrEmbedding)
	}
	vector, err := a.client.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	return Normalize(vector), nil
}

// Normalize returns v divided by its L2 norm plus a small epsilon, so that a
// near-zero vector never divides by zero.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum) + normEpsilon
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
