// Package session maps opaque session identifiers to their indexes. The
// registry is the seam the transport layer goes through to route a question
// to the right index.
package session

import (
	"sort"
	"sync"

	"docqa/internal/vectorstore"
)

// Registry is process-wide mutable state: inserts, deletes, and lookups are
// mutually exclusive, but a returned index is safe for concurrent read-only
// use because membership is immutable after build.
type Registry struct {
	provider vectorstore.Provider

	mu   sync.RWMutex
	live map[string]vectorstore.Index
}

func NewRegistry(provider vectorstore.Provider) *Registry {
	return &Registry{provider: provider, live: map[string]vectorstore.Index{}}
}

// Register makes a freshly built index addressable. Only called after a
// successful build, so a session id is never visible half-constructed.
func (r *Registry) Register(idx vectorstore.Index) {
	r.mu.Lock()
	r.live[idx.SessionID()] = idx
	r.mu.Unlock()
}

// Lookup resolves a session id, rehydrating a persisted index from the
// provider when it is not live in this process. Unknown ids report
// domain.ErrSessionNotFound (from the provider).
func (r *Registry) Lookup(sessionID string) (vectorstore.Index, error) {
	r.mu.RLock()
	idx, ok := r.live[sessionID]
	r.mu.RUnlock()
	if ok {
		return idx, nil
	}

	idx, err := r.provider.Open(sessionID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	// Another request may have rehydrated it first; keep the existing handle.
	if existing, ok := r.live[sessionID]; ok {
		r.mu.Unlock()
		_ = idx.Close()
		return existing, nil
	}
	r.live[sessionID] = idx
	r.mu.Unlock()
	return idx, nil
}

// Delete removes the session and destroys its persisted index. Deleting an
// unknown session reports domain.ErrSessionNotFound.
func (r *Registry) Delete(sessionID string) error {
	r.mu.Lock()
	idx, ok := r.live[sessionID]
	delete(r.live, sessionID)
	r.mu.Unlock()

	if !ok {
		var err error
		idx, err = r.provider.Open(sessionID)
		if err != nil {
			return err
		}
	}
	return idx.Destroy()
}

// List returns every known session id: live handles plus whatever the
// provider has persisted.
func (r *Registry) List() ([]string, error) {
	seen := map[string]struct{}{}
	r.mu.RLock()
	for id := range r.live {
		seen[id] = struct{}{}
	}
	r.mu.RUnlock()

	persisted, err := r.provider.List()
	if err != nil {
		return nil, err
	}
	for _, id := range persisted {
		seen[id] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
