package models

// Chunk is a bounded span of whole sentences taken from one paragraph of the
// source document. Index is the chunk's position in document reading order
// and doubles as its document ID for citation.
type Chunk struct {
	Content string
	Index   int
}

// RetrievalResult is a chunk returned by a similarity query.
type RetrievalResult struct {
	Content string
	Score   float32
	Index   int
}

// Answer is the generated answer plus the context actually offered to the
// generator, in descending score order.
type Answer struct {
	Content string
	Context []RetrievalResult
}
