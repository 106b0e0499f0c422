// Package retrieval turns a free-text question and a session index into a
// filtered, scored, display-ready list of passages plus diagnostics.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"strings"

	"docqa/internal/domain"
	"docqa/internal/vectorstore"
)

// DefaultTopK is deliberately wider than the typical display count so the
// filtering stages can discard noisy matches without starving the answer.
const DefaultTopK = 10

const previewLength = 200

// Item is one passage that reached a given pipeline stage, with both the raw
// and the normalized score and the display source name.
type Item struct {
	Passage    domain.Passage
	RawScore   float64
	Similarity float64
	Source     string
}

// Result is the outcome of one retrieval run.
type Result struct {
	Items       []Item
	Context     string
	Metadata    []domain.MetadataItem
	Diagnostics domain.RetrievalDiagnostics
}

// Options tune a single retrieval run. A nil Threshold disables similarity
// filtering; a nil Relevance disables the relevance stage (all passages pass
// through unchanged).
type Options struct {
	Threshold *float64
	Relevance RelevanceFilter
}

// Engine runs the staged retrieval pipeline against an index.
type Engine struct {
	topK int
}

func NewEngine(topK int) *Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Engine{topK: topK}
}

// Retrieve executes the pipeline in strict order: similarity search, score
// normalization, similarity-threshold filter, relevance filter, context and
// metadata assembly. Every stage is observable in the diagnostics. An empty
// index flows through naturally and produces an empty result.
func (e *Engine) Retrieve(ctx context.Context, idx vectorstore.Index, question string, opts Options) (*Result, error) {
	if opts.Threshold != nil && (*opts.Threshold < 0 || *opts.Threshold > 1) {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidThreshold, *opts.Threshold)
	}

	scored, err := idx.Query(ctx, question, e.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieving passages: %w", err)
	}

	total, err := idx.Count()
	if err != nil {
		total = len(scored)
	}

	items := make([]Item, len(scored))
	for i, sp := range scored {
		items[i] = Item{
			Passage:    sp.Passage,
			RawScore:   sp.RawScore,
			Similarity: NormalizeScore(sp.RawScore),
			Source:     DisplayName(sp.Passage.Origin),
		}
	}
	before := len(items)

	if opts.Threshold != nil {
		kept := items[:0]
		for _, it := range items {
			if it.Similarity >= *opts.Threshold {
				kept = append(kept, it)
			}
		}
		items = kept
	}
	afterSimilarity := len(items)

	if opts.Relevance != nil {
		kept := items[:0]
		for _, it := range items {
			relevant, _, err := opts.Relevance.Assess(ctx, it.Passage.Text, question)
			if err != nil {
				return nil, fmt.Errorf("assessing relevance: %w", err)
			}
			if relevant {
				kept = append(kept, it)
			}
		}
		items = kept
	}
	afterRelevance := len(items)

	result := &Result{
		Items:    items,
		Metadata: make([]domain.MetadataItem, 0, len(items)),
	}

	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "Chunk %d (%s): %s\n\n", i+1, it.Source, it.Passage.Text)
		result.Metadata = append(result.Metadata, domain.MetadataItem{
			ChunkID:         i + 1,
			Source:          it.Source,
			SimilarityScore: roundPercent(it.Similarity),
			Page:            it.Passage.Page,
			ContentPreview:  truncate(it.Passage.Text, previewLength),
		})
	}
	result.Context = b.String()

	result.Diagnostics = domain.RetrievalDiagnostics{
		TotalChunksInDB:       total,
		ChunksRequested:       e.topK,
		ChunksBeforeFilter:    before,
		AfterSimilarityFilter: afterSimilarity,
		AfterRelevanceFilter:  afterRelevance,
		ChunksUsed:            len(items),
	}
	fillStats(&result.Diagnostics, result.Metadata)
	return result, nil
}

// fillStats computes aggregate percentage similarity over the passages
// actually used. Everything defaults to 0 when nothing survived.
func fillStats(d *domain.RetrievalDiagnostics, metadata []domain.MetadataItem) {
	if len(metadata) == 0 {
		return
	}
	sum := 0.0
	min := metadata[0].SimilarityScore
	max := metadata[0].SimilarityScore
	for _, m := range metadata {
		sum += m.SimilarityScore
		if m.SimilarityScore < min {
			min = m.SimilarityScore
		}
		if m.SimilarityScore > max {
			max = m.SimilarityScore
		}
	}
	d.AvgSimilarity = math.Round(sum/float64(len(metadata))*10) / 10
	d.MaxSimilarity = max
	d.MinSimilarity = min
}

// roundPercent converts a normalized score to a percentage with one decimal.
func roundPercent(similarity float64) float64 {
	return math.Round(similarity*1000) / 10
}
