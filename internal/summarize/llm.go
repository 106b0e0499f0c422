package summarize

import (
	"context"
	"fmt"

	"docqa/internal/domain"
)

// summaryInputLimit bounds how much page text goes into the summary prompt.
const summaryInputLimit = 8000

const summaryTemplate = `Summarize the following web content in a clear and concise manner.
Focus on the main points, key information, and important details.
Include source citations in the format [Source: %s] at the end of each major point.

Content:
%s

Provide a comprehensive summary with source citations:
`

// LLM summarizes via the language-model capability.
type LLM struct {
	llm domain.LLM
}

func NewLLM(llm domain.LLM) *LLM {
	return &LLM{llm: llm}
}

func (s *LLM) Summarize(ctx context.Context, text, source string) (string, error) {
	runes := []rune(text)
	if len(runes) > summaryInputLimit {
		text = string(runes[:summaryInputLimit])
	}
	out, err := s.llm.Complete(ctx, fmt.Sprintf(summaryTemplate, source, text))
	if err != nil {
		return "", fmt.Errorf("summarizing content: %w", err)
	}
	return out, nil
}
