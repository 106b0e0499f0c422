// Package embeddingtest provides a deterministic in-process embedder for
// tests: no network, stable vectors, token overlap maps to similarity.
package embeddingtest

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync/atomic"

	"docqa/internal/domain"
)

var errEmbedFailed = fmt.Errorf("%w: fake embedder set to fail", domain.ErrEmbeddingService)

// Fake hashes tokens into a fixed-dimension unit vector. Texts sharing tokens
// get nearby vectors, so ranking behaves like a real embedder.
type Fake struct {
	dim   int
	calls atomic.Int64
	fail  atomic.Bool
}

func New(dim int) *Fake {
	if dim <= 0 {
		dim = 16
	}
	return &Fake{dim: dim}
}

func (f *Fake) Name() string   { return "fake-embedder" }
func (f *Fake) Dimension() int { return f.dim }

// Calls reports how many Embed calls were made; tests use it to prove that
// reopening a persisted index does not re-embed.
func (f *Fake) Calls() int { return int(f.calls.Load()) }

// SetFailing makes every subsequent Embed call fail with a wrapped
// domain.ErrEmbeddingService.
func (f *Fake) SetFailing(fail bool) { f.fail.Store(fail) }

func (f *Fake) Embed(_ context.Context, text string) ([]float64, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, errEmbedFailed
	}
	vec := make([]float64, f.dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(tok, ".,;:!?\"'()")))
		vec[int(h.Sum32())%f.dim]++
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}
