package rag

import "pdfqa/internal/models"

// FilterByRelevance keeps only results whose score strictly exceeds the
// threshold, preserving their descending-score order. An empty result is not
// an error; it means no sufficiently relevant context was found.
func FilterByRelevance(results []models.RetrievalResult, threshold float32) []models.RetrievalResult {
	var filtered []models.RetrievalResult
	for _, r := range results {
		if r.Score > threshold {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
