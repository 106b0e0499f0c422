package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
	"docqa/internal/embedding/embeddingtest"
	"docqa/internal/vectorstore/memory"
	"docqa/internal/vectorstore/sqlite"
)

func TestRegisterAndLookup(t *testing.T) {
	p := memory.NewProvider(embeddingtest.New(64))
	r := NewRegistry(p)

	idx, err := p.Build(context.Background(), []domain.Passage{{Text: "hello", Origin: "a.txt"}})
	require.NoError(t, err)
	r.Register(idx)

	got, err := r.Lookup(idx.SessionID())
	require.NoError(t, err)
	assert.Equal(t, idx.SessionID(), got.SessionID())
}

func TestLookupUnknown(t *testing.T) {
	r := NewRegistry(memory.NewProvider(embeddingtest.New(64)))
	_, err := r.Lookup("missing")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestLookupRehydratesFromProvider(t *testing.T) {
	p, err := sqlite.NewProvider(t.TempDir(), embeddingtest.New(64))
	require.NoError(t, err)

	idx, err := p.Build(context.Background(), []domain.Passage{{Text: "persisted", Origin: "a.txt"}})
	require.NoError(t, err)
	id := idx.SessionID()
	require.NoError(t, idx.Close())

	// Fresh registry, as after a process restart: nothing live, still found.
	r := NewRegistry(p)
	got, err := r.Lookup(id)
	require.NoError(t, err)
	n, err := got.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteThenLookupFails(t *testing.T) {
	p := memory.NewProvider(embeddingtest.New(64))
	r := NewRegistry(p)

	idx, err := p.Build(context.Background(), []domain.Passage{{Text: "hello", Origin: "a.txt"}})
	require.NoError(t, err)
	r.Register(idx)

	require.NoError(t, r.Delete(idx.SessionID()))

	_, err = r.Lookup(idx.SessionID())
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))

	err = r.Delete(idx.SessionID())
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestListUnionsLiveAndPersisted(t *testing.T) {
	p, err := sqlite.NewProvider(t.TempDir(), embeddingtest.New(64))
	require.NoError(t, err)
	r := NewRegistry(p)

	a, err := p.Build(context.Background(), []domain.Passage{{Text: "one", Origin: "a.txt"}})
	require.NoError(t, err)
	r.Register(a)

	b, err := p.Build(context.Background(), []domain.Passage{{Text: "two", Origin: "b.txt"}})
	require.NoError(t, err)
	require.NoError(t, b.Close()) // persisted but not live

	ids, err := r.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.SessionID(), b.SessionID()}, ids)
}

func TestConcurrentLookups(t *testing.T) {
	p := memory.NewProvider(embeddingtest.New(64))
	r := NewRegistry(p)

	idx, err := p.Build(context.Background(), []domain.Passage{{Text: "hello world", Origin: "a.txt"}})
	require.NoError(t, err)
	r.Register(idx)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.Lookup(idx.SessionID())
			assert.NoError(t, err)
			_, err = got.Query(context.Background(), "hello", 5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
