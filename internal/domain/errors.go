package domain

import "errors"

// Error kinds exposed by the core. Callers match these with errors.Is; the
// transport layer maps them to client-appropriate messages without leaking
// upstream service error text.
var (
	// ErrNoExtractableText means a source yielded no text at all.
	ErrNoExtractableText = errors.New("no extractable text in source")

	// ErrEmbeddingService means the embedding capability was unreachable or
	// rejected input, during index build or query embedding.
	ErrEmbeddingService = errors.New("embedding service failure")

	// ErrLLMService means the language-model call failed.
	ErrLLMService = errors.New("language model service failure")

	// ErrSessionNotFound means the session id is unknown or was deleted.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidThreshold means a similarity threshold outside [0,1].
	ErrInvalidThreshold = errors.New("similarity threshold outside [0,1]")
)
