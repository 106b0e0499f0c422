package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
	"docqa/internal/embedding/embeddingtest"
)

func passagesFrom(origin string, texts ...string) []domain.Passage {
	out := make([]domain.Passage, len(texts))
	for i, t := range texts {
		out[i] = domain.Passage{Text: t, Origin: origin, Seq: i}
	}
	return out
}

func TestBuildAndQueryOrdering(t *testing.T) {
	p := NewProvider(embeddingtest.New(256))
	idx, err := p.Build(context.Background(), passagesFrom("a.txt",
		"cats purr and sleep all day",
		"dogs bark at the mailman",
		"the stock market closed higher today",
	))
	require.NoError(t, err)

	results, err := idx.Query(context.Background(), "why do cats purr", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "cats purr and sleep all day", results[0].Passage.Text)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].RawScore, results[i-1].RawScore)
	}
}

func TestSessionIsolation(t *testing.T) {
	p := NewProvider(embeddingtest.New(256))
	a, err := p.Build(context.Background(), passagesFrom("a.txt", "alpha passage"))
	require.NoError(t, err)
	b, err := p.Build(context.Background(), passagesFrom("b.txt", "beta passage"))
	require.NoError(t, err)
	require.NotEqual(t, a.SessionID(), b.SessionID())

	results, err := b.Query(context.Background(), "alpha passage", 10)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, "b.txt", r.Passage.Origin)
	}
}

func TestOpenAndDestroy(t *testing.T) {
	p := NewProvider(embeddingtest.New(256))
	idx, err := p.Build(context.Background(), passagesFrom("a.txt", "one", "two"))
	require.NoError(t, err)

	reopened, err := p.Open(idx.SessionID())
	require.NoError(t, err)
	n, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sample, ok, err := reopened.Peek()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a.txt", sample.Origin)

	require.NoError(t, idx.Destroy())
	_, err = p.Open(idx.SessionID())
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestBuildFailsCleanly(t *testing.T) {
	emb := embeddingtest.New(256)
	emb.SetFailing(true)
	p := NewProvider(emb)

	_, err := p.Build(context.Background(), passagesFrom("a.txt", "one"))
	assert.True(t, errors.Is(err, domain.ErrEmbeddingService))

	ids, err := p.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
}
