package rag

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"pdfqa/internal/chunker"
	"pdfqa/internal/config"
	"pdfqa/internal/embedding"
	"pdfqa/internal/models"
)

type stubSegmenter struct{}

var stubSentenceRe = regexp.MustCompile(`[^.!?]+[.!?]?`)

func (stubSegmenter) Segment(text string) []string {
	return stubSentenceRe.FindAllString(text, -1)
}

// stubEmbedClient maps text to a fixed unit vector picked by keyword, so
// retrieval in tests is deterministic.
type stubEmbedClient struct {
	docCalls int
}

func (s *stubEmbedClient) vector(text string) []float32 {
	switch {
	case regexp.MustCompile(`termination|terminate`).MatchString(text):
		return []float32{1, 0, 0}
	case regexp.MustCompile(`payment|invoice`).MatchString(text):
		return []float32{0, 1, 0}
	default:
		return []float32{0, 0, 1}
	}
}

func (s *stubEmbedClient) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	s.docCalls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.vector(t)
	}
	return out, nil
}

func (s *stubEmbedClient) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return s.vector(text), nil
}

type stubGenerator struct {
	question string
	contexts []models.RetrievalResult
	err      error
}

func (g *stubGenerator) Generate(_ context.Context, question string, contexts []models.RetrievalResult) (*models.Answer, error) {
	g.question = question
	g.contexts = contexts
	if g.err != nil {
		return nil, g.err
	}
	return &models.Answer{Content: "stub answer", Context: contexts}, nil
}

func testRAGConfig(t *testing.T) *config.RAGConfig {
	t.Helper()
	return &config.RAGConfig{
		MinChunkLength:     20,
		MaxChunkLength:     500,
		MaxInputLength:     1_000_000,
		TopK:               5,
		CiteTopK:           3,
		RelevanceThreshold: 0.6,
		IndexPath:          filepath.Join(t.TempDir(), "test.index"),
	}
}

func newTestPipeline(t *testing.T, client *stubEmbedClient, gen Generator, text string) *Pipeline {
	t.Helper()
	ch := chunker.NewChunker(stubSegmenter{}, 20, 500, 0)
	p := NewPipeline(ch, embedding.NewAdapter(client), gen, testRAGConfig(t))
	return p.WithExtractor(func(string) (string, error) { return text, nil })
}

const testDocument = `The agreement covers termination and either party may terminate with notice.

Payment is due within fourteen days of the invoice being issued to the client.

Weather conditions in the region are generally mild throughout the year there.`

func TestPipelineRun(t *testing.T) {
	client := &stubEmbedClient{}
	gen := &stubGenerator{}
	p := newTestPipeline(t, client, gen, testDocument)

	answer, err := p.Run(context.Background(), "doc.pdf", "When can I terminate the termination clause?")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if answer.Content != "stub answer" {
		t.Errorf("unexpected answer %q", answer.Content)
	}
	// only the termination chunk scores 1.0 against the termination query;
	// the others are orthogonal and fall below the threshold
	if len(gen.contexts) != 1 {
		t.Fatalf("expected 1 relevant context, got %d: %+v", len(gen.contexts), gen.contexts)
	}
	if gen.contexts[0].Index != 0 {
		t.Errorf("expected chunk 0 as context, got %d", gen.contexts[0].Index)
	}
	if gen.question != "When can I terminate the termination clause?" {
		t.Errorf("question not passed through unchanged: %q", gen.question)
	}
}

func TestPipelineEmptyDocumentAbortsBeforeEmbedding(t *testing.T) {
	client := &stubEmbedClient{}
	gen := &stubGenerator{}
	p := newTestPipeline(t, client, gen, "")

	_, err := p.Run(context.Background(), "doc.pdf", "anything?")
	if !errors.Is(err, chunker.ErrNoChunks) {
		t.Fatalf("expected ErrNoChunks, got %v", err)
	}
	if client.docCalls != 0 {
		t.Errorf("embedding was attempted for an empty document")
	}
	if gen.question != "" {
		t.Errorf("generator was called for a failed run")
	}
}

func TestPipelineEmptyQuestion(t *testing.T) {
	p := newTestPipeline(t, &stubEmbedClient{}, &stubGenerator{}, testDocument)
	_, err := p.Run(context.Background(), "doc.pdf", "   ")
	if err == nil {
		t.Fatal("expected an error for an empty question")
	}
}

func TestPipelineExtractionFailure(t *testing.T) {
	client := &stubEmbedClient{}
	p := newTestPipeline(t, client, &stubGenerator{}, "").
		WithExtractor(func(string) (string, error) { return "", errors.New("boom") })
	_, err := p.Run(context.Background(), "doc.pdf", "anything?")
	if err == nil {
		t.Fatal("expected an error")
	}
	if client.docCalls != 0 {
		t.Errorf("embedding was attempted after extraction failed")
	}
}

func TestPipelineGenerationFailure(t *testing.T) {
	gen := &stubGenerator{err: ErrGeneration}
	p := newTestPipeline(t, &stubEmbedClient{}, gen, testDocument)
	_, err := p.Run(context.Background(), "doc.pdf", "termination?")
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}
