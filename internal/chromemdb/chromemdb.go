package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
)

var (
	// ErrBuild means the index could not be built or persisted.
	ErrBuild = errors.New("index build failed")
	// ErrLoad means the path does not resolve to a previously built index.
	ErrLoad = errors.New("index load failed")
	// ErrQuery means a similarity query failed.
	ErrQuery = errors.New("index query failed")
)

const (
	collectionName = "chunks"
	compress       = false
)

// QueryMatch is one nearest-neighbor hit: the chunk's position in the build
// order, its stored content and the inner-product similarity score.
type QueryMatch struct {
	Index   int
	Content string
	Score   float32
}

// Index wraps a chromem-go collection holding one document per chunk, keyed
// by the chunk's position. All vectors are expected to be unit-normalized so
// inner product equals cosine similarity.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// Build constructs a fresh index from the full ordered chunk sequence and
// persists it at path. Entry i corresponds to contents[i].
func Build(ctx context.Context, contents []string, embeddings [][]float32, path string) (*Index, error) {
	if len(contents) == 0 {
		return nil, fmt.Errorf("%w: no embeddings", ErrBuild)
	}
	if len(contents) != len(embeddings) {
		return nil, fmt.Errorf("%w: %d chunks but %d embeddings", ErrBuild, len(contents), len(embeddings))
	}

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuild, err)
	}

	docs := make([]chromem.Document, len(contents))
	for i := range contents {
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(i),
			Content:   contents[i],
			Embedding: embeddings[i],
		}
	}
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuild, err)
	}

	if err := db.ExportToFile(path, compress, "", collectionName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuild, err)
	}
	return &Index{db: db, collection: collection}, nil
}

// Load reconstructs a previously persisted index from path.
func Load(ctx context.Context, path string) (*Index, error) {
	db := chromem.NewDB()
	if err := db.ImportFromFile(path, ""); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	collection := db.GetCollection(collectionName, nil)
	if collection == nil {
		return nil, fmt.Errorf("%w: no chunk collection in %s", ErrLoad, path)
	}
	return &Index{db: db, collection: collection}, nil
}

// Count returns the number of indexed chunks.
func (idx *Index) Count() int {
	return idx.collection.Count()
}

// Query returns the topK nearest entries to queryEmbedding by inner product,
// in descending score order. topK is clamped to the collection size.
func (idx *Index) Query(ctx context.Context, queryEmbedding []float32, topK int) ([]QueryMatch, error) {
	if len(queryEmbedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", ErrQuery)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive", ErrQuery)
	}
	if count := idx.collection.Count(); topK > count {
		topK = count
	}

	results, err := idx.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       topK,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	matches := make([]QueryMatch, len(results))
	for i, r := range results {
		pos, err := strconv.Atoi(r.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: unexpected document ID %q", ErrQuery, r.ID)
		}
		matches[i] = QueryMatch{Index: pos, Content: r.Content, Score: r.Similarity}
	}
	return matches, nil
}
