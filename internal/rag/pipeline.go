package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"pdfqa/internal/chromemdb"
	"pdfqa/internal/chunker"
	"pdfqa/internal/config"
	"pdfqa/internal/embedding"
	"pdfqa/internal/extractor"
	"pdfqa/internal/helper"
	"pdfqa/internal/models"
)

// Pipeline runs the single-shot question-answering batch:
// extract, chunk, embed, build and persist the index, reload it, query,
// filter by relevance, generate the answer. Any stage failure aborts the run
// with a stage-tagged error; there are no retries.
type Pipeline struct {
	extract   func(path string) (string, error)
	chunker   *chunker.Chunker
	embedder  *embedding.Adapter
	generator Generator
	cfg       *config.RAGConfig
}

func NewPipeline(ch *chunker.Chunker, embedder *embedding.Adapter, generator Generator, cfg *config.RAGConfig) *Pipeline {
	return &Pipeline{
		extract:   extractor.ExtractText,
		chunker:   ch,
		embedder:  embedder,
		generator: generator,
		cfg:       cfg,
	}
}

// WithExtractor replaces the document-text extractor, mainly for tests.
func (p *Pipeline) WithExtractor(extract func(path string) (string, error)) *Pipeline {
	p.extract = extract
	return p
}

func (p *Pipeline) Run(ctx context.Context, pdfPath, question string) (*models.Answer, error) {
	log.Info().Str("path", pdfPath).Msg("Extracting text from the PDF")
	text, err := p.extract(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	log.Info().Msg("Chunking the extracted text")
	chunks, err := p.chunker.Chunk(text)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	log.Info().Int("chunks", len(chunks)).Msg("Text successfully chunked")

	log.Info().Msg("Generating embeddings for the chunks")
	embeddings, err := p.embedder.EmbedChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	log.Info().Str("path", p.cfg.IndexPath).Msg("Building and persisting the vector index")
	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
	}
	if _, err := chromemdb.Build(ctx, contents, embeddings, p.cfg.IndexPath); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	// Always query the reloaded index, not the in-memory one, so persistence
	// corruption is caught before answering.
	log.Info().Msg("Reloading the vector index")
	index, err := chromemdb.Load(ctx, p.cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	log.Info().Str("question", question).Msg("Querying the vector index")
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("query: %w: empty query text", chromemdb.ErrQuery)
	}
	queryEmbedding, err := p.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	matches, err := index.Query(ctx, queryEmbedding, p.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	results := make([]models.RetrievalResult, len(matches))
	for i, m := range matches {
		results[i] = models.RetrievalResult{Content: m.Content, Score: m.Score, Index: m.Index}
		log.Debug().
			Int("rank", i).
			Int("chunk", m.Index).
			Float32("score", m.Score).
			Str("text", helper.Preview(m.Content, 200)).
			Msg("Query result")
	}

	contexts := FilterByRelevance(results, p.cfg.RelevanceThreshold)
	log.Info().Int("relevant", len(contexts)).Msg("Filtered context chunks by relevance threshold")

	log.Info().Msg("Querying the model for an answer")
	answer, err := p.generator.Generate(ctx, question, contexts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return answer, nil
}
