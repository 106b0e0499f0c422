// Package llmtest provides an in-process language model for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"docqa/internal/domain"
)

// Fake records every prompt and replies with a fixed response.
type Fake struct {
	mu       sync.Mutex
	prompts  []string
	Response string
	Fail     bool
}

func New(response string) *Fake {
	return &Fake{Response: response}
}

func (f *Fake) Name() string { return "fake-llm" }

func (f *Fake) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail {
		return "", fmt.Errorf("%w: fake llm set to fail", domain.ErrLLMService)
	}
	f.prompts = append(f.prompts, prompt)
	return f.Response, nil
}

// Prompts returns a copy of every prompt seen so far.
func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// Calls reports how many completions were requested.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}
