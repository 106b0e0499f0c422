// Package memory is an in-process index provider: brute-force similarity
// over embedded passages, one isolated index per session. Used by the chat
// command and by tests; state lives for the process lifetime only.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"docqa/internal/domain"
	"docqa/internal/vectorstore"
)

// Provider keeps every built index in a locked map keyed by session id.
type Provider struct {
	embedder domain.Embedder

	mu      sync.RWMutex
	indexes map[string]*index
}

func NewProvider(embedder domain.Embedder) *Provider {
	return &Provider{embedder: embedder, indexes: map[string]*index{}}
}

func (p *Provider) Name() string { return "memory" }

// Build embeds all passages up front; a failed embedding leaves no index
// behind.
func (p *Provider) Build(ctx context.Context, passages []domain.Passage) (vectorstore.Index, error) {
	vectors := make([][]float64, len(passages))
	for i, passage := range passages {
		vec, err := p.embedder.Embed(ctx, passage.Text)
		if err != nil {
			return nil, fmt.Errorf("embedding passage %d: %w", passage.Seq, err)
		}
		vectors[i] = vec
	}
	idx := &index{
		provider: p,
		id:       uuid.NewString(),
		passages: append([]domain.Passage(nil), passages...),
		vectors:  vectors,
	}
	p.mu.Lock()
	p.indexes[idx.id] = idx
	p.mu.Unlock()
	return idx, nil
}

func (p *Provider) Open(sessionID string) (vectorstore.Index, error) {
	p.mu.RLock()
	idx, ok := p.indexes[sessionID]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return idx, nil
}

func (p *Provider) List() ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.indexes))
	for id := range p.indexes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type index struct {
	provider *Provider
	id       string
	passages []domain.Passage
	vectors  [][]float64
}

func (x *index) SessionID() string { return x.id }

// Query reports raw scores as L2 distance between (near-)unit vectors, the
// convention the score normalization treats as its primary range.
func (x *index) Query(ctx context.Context, text string, k int) ([]domain.ScoredPassage, error) {
	if k <= 0 {
		k = 10
	}
	qv, err := x.provider.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	results := make([]domain.ScoredPassage, len(x.passages))
	for i := range x.passages {
		results[i] = domain.ScoredPassage{
			Passage:  x.passages[i],
			RawScore: l2Distance(x.vectors[i], qv),
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].RawScore < results[j].RawScore })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func (x *index) Count() (int, error) { return len(x.passages), nil }

func (x *index) Peek() (domain.Passage, bool, error) {
	if len(x.passages) == 0 {
		return domain.Passage{}, false, nil
	}
	return x.passages[0], true, nil
}

func (x *index) Destroy() error {
	x.provider.mu.Lock()
	delete(x.provider.indexes, x.id)
	x.provider.mu.Unlock()
	return nil
}

func (x *index) Close() error { return nil }

func l2Distance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
