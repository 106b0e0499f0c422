// Package vectorstore defines the per-session similarity index contract.
// An index is built once per ingestion, is immutable in membership, and is
// safe for concurrent read-only queries.
package vectorstore

import (
	"context"

	"docqa/internal/domain"
)

// Index is one session's embedding-backed passage store.
type Index interface {
	// SessionID returns the opaque identifier this index is addressed by.
	SessionID() string

	// Query embeds the text once and returns the k nearest stored passages
	// paired with the raw metric score, ordered most similar first. It never
	// mutates the index.
	Query(ctx context.Context, text string, k int) ([]domain.ScoredPassage, error)

	// Count reports the number of stored passages.
	Count() (int, error)

	// Peek returns one arbitrary stored passage for introspection, without
	// running a similarity query. ok is false for an empty index.
	Peek() (p domain.Passage, ok bool, err error)

	// Destroy irreversibly removes the index and releases its resources.
	Destroy() error

	// Close releases the handle without destroying persisted state.
	Close() error
}

// Provider builds, reopens, and enumerates session indexes.
type Provider interface {
	// Name identifies the backing store in technical info.
	Name() string

	// Build embeds every passage and stores the result under a fresh session
	// id. On failure nothing is left behind.
	Build(ctx context.Context, passages []domain.Passage) (Index, error)

	// Open reconstructs a handle to a previously built index without
	// re-embedding. Unknown ids report domain.ErrSessionNotFound.
	Open(sessionID string) (Index, error)

	// List enumerates the session ids known to this provider.
	List() ([]string, error)
}
