package chunker

import (
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// EnglishSegmenter detects sentence boundaries with the punkt tokenizer's
// bundled English model.
type EnglishSegmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewEnglishSegmenter loads the English sentence model. This is done once at
// process start; failure to load is fatal for the run.
func NewEnglishSegmenter() (*EnglishSegmenter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return &EnglishSegmenter{tokenizer: tokenizer}, nil
}

func (s *EnglishSegmenter) Segment(text string) []string {
	var out []string
	for _, sentence := range s.tokenizer.Tokenize(text) {
		out = append(out, sentence.Text)
	}
	return out
}
