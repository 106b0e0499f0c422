package retrieval

import "context"

// RelevanceFilter is the second, similarity-independent filtering stage:
// it judges whether a passage actually answers the question rather than
// merely being embedding-similar. Implementations can be swapped at engine
// construction without touching the pipeline.
type RelevanceFilter interface {
	Assess(ctx context.Context, passageText, question string) (relevant bool, confidence float64, err error)
}

// PassAll accepts every passage with full confidence. It is the default
// until an LLM-backed assessor is plugged in.
type PassAll struct{}

func (PassAll) Assess(context.Context, string, string) (bool, float64, error) {
	return true, 1.0, nil
}
