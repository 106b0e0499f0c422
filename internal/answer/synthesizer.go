// Package answer turns retrieved passages into a grounded, cited answer.
package answer

import (
	"context"
	"fmt"

	"docqa/internal/domain"
	"docqa/internal/retrieval"
)

const promptTemplate = `Answer ONLY using the context below.
Add the source name after EACH sentence drawn from the context, in [source] format.
Use only the display source name, not a full path.

Context:
%s

Question:
%s
`

// Synthesizer assembles the grounded prompt and invokes the language model
// exactly once per question. The model's text is returned unmodified; no
// citation-format validation happens here.
type Synthesizer struct {
	llm domain.LLM
}

func New(llm domain.LLM) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize answers the question from the retrieval result. An empty
// context block still goes to the model: an unanswerable question yields
// whatever "I don't know" style response the model produces, not an error.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, res *retrieval.Result) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, res.Context, question)
	text, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("completing answer: %w", err)
	}
	return text, nil
}
