package domain

import "context"

// Unit is one extraction unit of a source document. Extractors that know
// about internal structure (PDF pages) emit one unit per page; everything
// else is a single unit with no page number.
type Unit struct {
	Text string
	Page *int
}

// Passage is a contiguous slice of a source document's text, ready for
// embedding and retrieval.
type Passage struct {
	Text   string
	Origin string
	Page   *int
	Seq    int
}

// ScoredPassage pairs a passage with the raw score reported by a similarity
// query. The raw score convention (distance vs. similarity, range) depends on
// the index metric in use.
type ScoredPassage struct {
	Passage  Passage
	RawScore float64
}

// MetadataItem describes one passage that survived filtering and was used to
// ground an answer. ChunkID is the 1-based position in the assembled context.
type MetadataItem struct {
	ChunkID         int     `json:"chunk_id"`
	Source          string  `json:"source"`
	SimilarityScore float64 `json:"similarity_score"`
	Page            *int    `json:"page,omitempty"`
	ContentPreview  string  `json:"content_preview"`
}

// RetrievalDiagnostics exposes per-stage counts and aggregate similarity
// statistics for one query. Percent values are 0 when nothing survived.
type RetrievalDiagnostics struct {
	TotalChunksInDB       int     `json:"total_chunks_in_db"`
	ChunksRequested       int     `json:"chunks_requested"`
	ChunksBeforeFilter    int     `json:"chunks_before_filter"`
	AfterSimilarityFilter int     `json:"chunks_after_similarity_filter"`
	AfterRelevanceFilter  int     `json:"chunks_after_relevance_filter"`
	ChunksUsed            int     `json:"chunks_used"`
	AvgSimilarity         float64 `json:"avg_similarity"`
	MaxSimilarity         float64 `json:"max_similarity"`
	MinSimilarity         float64 `json:"min_similarity"`
}

// IngestStats is the technical information reported for one ingestion.
type IngestStats struct {
	NumChunks          int     `json:"num_chunks"`
	ChunkSize          int     `json:"chunk_size"`
	ChunkOverlap       int     `json:"chunk_overlap"`
	TotalCharacters    int     `json:"total_characters"`
	AvgChunkSize       float64 `json:"avg_chunk_size"`
	EmbeddingModel     string  `json:"embedding_model"`
	EmbeddingDimension int     `json:"embedding_dimension"`
	VectorStore        string  `json:"vector_db"`
	SourceType         string  `json:"source_type"`
	Source             string  `json:"source"`
}

// SessionInfo is the technical information reported for an existing session.
type SessionInfo struct {
	SessionID          string `json:"session_id"`
	NumChunks          int    `json:"num_chunks"`
	EmbeddingModel     string `json:"embedding_model"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	VectorStore        string `json:"vector_db"`
	SourceType         string `json:"source_type"`
	Source             string `json:"source"`
}

// AskInfo is the technical information reported alongside one answer.
type AskInfo struct {
	RetrievalDiagnostics

	EmbeddingModel     string `json:"embedding_model"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	VectorStore        string `json:"vector_db"`
	SimilarityMetric   string `json:"similarity_metric"`
	LLMModel           string `json:"llm_model"`
}

// Embedder converts text into a fixed-dimension vector. The dimension must be
// consistent between index build and query.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// LLM is the language-model capability: one prompt, one completion, one
// round trip.
type LLM interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}
