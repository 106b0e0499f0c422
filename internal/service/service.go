// Package service exposes the operations the transport layer calls: ingest a
// source, ask a question, inspect, list, and delete sessions.
package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"docqa/internal/answer"
	"docqa/internal/chunker"
	"docqa/internal/domain"
	"docqa/internal/retrieval"
	"docqa/internal/session"
	"docqa/internal/summarize"
	"docqa/internal/vectorstore"
)

// Extractor turns a source into plain-text extraction units.
type Extractor interface {
	FromFile(path string) ([]domain.Unit, error)
	FromURL(ctx context.Context, rawURL string) ([]domain.Unit, error)
}

// Service wires the pipeline together. All fields are set at construction;
// the service itself is stateless apart from the registry.
type Service struct {
	extractor  Extractor
	chunker    *chunker.Chunker
	provider   vectorstore.Provider
	registry   *session.Registry
	engine     *retrieval.Engine
	synth      *answer.Synthesizer
	summarizer summarize.Summarizer
	relevance  retrieval.RelevanceFilter
	embedder   domain.Embedder
	llmName    string
}

type Config struct {
	Extractor  Extractor
	Chunker    *chunker.Chunker
	Provider   vectorstore.Provider
	Registry   *session.Registry
	Engine     *retrieval.Engine
	Synth      *answer.Synthesizer
	Summarizer summarize.Summarizer
	// Relevance is the filter applied when a caller asks for relevance
	// filtering. Defaults to retrieval.PassAll.
	Relevance retrieval.RelevanceFilter
	Embedder  domain.Embedder
	LLMName   string
}

func New(cfg Config) *Service {
	if cfg.Relevance == nil {
		cfg.Relevance = retrieval.PassAll{}
	}
	return &Service{
		extractor:  cfg.Extractor,
		chunker:    cfg.Chunker,
		provider:   cfg.Provider,
		registry:   cfg.Registry,
		engine:     cfg.Engine,
		synth:      cfg.Synth,
		summarizer: cfg.Summarizer,
		relevance:  cfg.Relevance,
		embedder:   cfg.Embedder,
		llmName:    cfg.LLMName,
	}
}

// IngestResult reports a successful ingestion. Summary is only set for URL
// ingestion.
type IngestResult struct {
	SessionID string             `json:"session_id"`
	Summary   string             `json:"summary,omitempty"`
	Stats     domain.IngestStats `json:"technical_info"`
}

// Answer is the outcome of one question.
type Answer struct {
	Text     string                `json:"answer"`
	Metadata []domain.MetadataItem `json:"metadata"`
	Info     domain.AskInfo        `json:"technical_info"`
}

// AskOptions tune one question. A nil Threshold disables similarity
// filtering; UseRelevanceFilter enables the configured relevance stage.
type AskOptions struct {
	Threshold          *float64
	UseRelevanceFilter bool
}

// IngestFile extracts, chunks, embeds, and registers a local document.
// Nothing is registered or persisted when any step fails.
func (s *Service) IngestFile(ctx context.Context, path string) (*IngestResult, error) {
	units, err := s.extractor.FromFile(path)
	if err != nil {
		return nil, err
	}
	return s.ingest(ctx, units, path, "document", "")
}

// IngestURL fetches a web page, summarizes it, and indexes it like a
// document. The summary is produced before the index is built so a failed
// summary never leaves an orphaned index behind.
func (s *Service) IngestURL(ctx context.Context, rawURL string) (*IngestResult, error) {
	units, err := s.extractor.FromURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	var full strings.Builder
	for _, u := range units {
		full.WriteString(u.Text)
		full.WriteString("\n\n")
	}
	summary, err := s.summarizer.Summarize(ctx, full.String(), rawURL)
	if err != nil {
		return nil, err
	}
	return s.ingest(ctx, units, rawURL, "URL", summary)
}

func (s *Service) ingest(ctx context.Context, units []domain.Unit, origin, sourceType, summary string) (*IngestResult, error) {
	passages := s.chunker.Split(units, origin)
	if len(passages) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoExtractableText, origin)
	}

	idx, err := s.provider.Build(ctx, passages)
	if err != nil {
		return nil, err
	}
	s.registry.Register(idx)

	totalChars := 0
	for _, p := range passages {
		totalChars += len([]rune(p.Text))
	}
	avg := float64(totalChars) / float64(len(passages))

	return &IngestResult{
		SessionID: idx.SessionID(),
		Summary:   summary,
		Stats: domain.IngestStats{
			NumChunks:          len(passages),
			ChunkSize:          s.chunker.ChunkSize(),
			ChunkOverlap:       s.chunker.Overlap(),
			TotalCharacters:    totalChars,
			AvgChunkSize:       math.Round(avg*100) / 100,
			EmbeddingModel:     s.embedder.Name(),
			EmbeddingDimension: s.embedder.Dimension(),
			VectorStore:        s.provider.Name(),
			SourceType:         sourceType,
			Source:             retrieval.DisplayName(origin),
		},
	}, nil
}

// Ask answers a question against one session. The session id must resolve
// via the registry; retrieval-time service failures abort this question only.
func (s *Service) Ask(ctx context.Context, sessionID, question string, opts AskOptions) (*Answer, error) {
	idx, err := s.registry.Lookup(sessionID)
	if err != nil {
		return nil, err
	}

	retrOpts := retrieval.Options{Threshold: opts.Threshold}
	if opts.UseRelevanceFilter {
		retrOpts.Relevance = s.relevance
	}
	res, err := s.engine.Retrieve(ctx, idx, question, retrOpts)
	if err != nil {
		return nil, err
	}

	text, err := s.synth.Synthesize(ctx, question, res)
	if err != nil {
		return nil, err
	}

	return &Answer{
		Text:     text,
		Metadata: res.Metadata,
		Info: domain.AskInfo{
			RetrievalDiagnostics: res.Diagnostics,
			EmbeddingModel:       s.embedder.Name(),
			EmbeddingDimension:   s.embedder.Dimension(),
			VectorStore:          s.provider.Name(),
			SimilarityMetric:     "L2 distance (normalized to 0-1)",
			LLMModel:             s.llmName,
		},
	}, nil
}

// SessionInfo reports technical information about an existing session.
func (s *Service) SessionInfo(sessionID string) (*domain.SessionInfo, error) {
	idx, err := s.registry.Lookup(sessionID)
	if err != nil {
		return nil, err
	}
	count, err := idx.Count()
	if err != nil {
		return nil, fmt.Errorf("counting passages: %w", err)
	}

	sourceType, source := "unknown", "unknown"
	if sample, ok, err := idx.Peek(); err == nil && ok {
		source = retrieval.DisplayName(sample.Origin)
		if strings.HasPrefix(sample.Origin, "http://") || strings.HasPrefix(sample.Origin, "https://") {
			sourceType = "URL"
		} else {
			sourceType = "document"
		}
	}

	return &domain.SessionInfo{
		SessionID:          sessionID,
		NumChunks:          count,
		EmbeddingModel:     s.embedder.Name(),
		EmbeddingDimension: s.embedder.Dimension(),
		VectorStore:        s.provider.Name(),
		SourceType:         sourceType,
		Source:             source,
	}, nil
}

// DeleteSession removes a session and destroys its index.
func (s *Service) DeleteSession(sessionID string) error {
	return s.registry.Delete(sessionID)
}

// ListSessions enumerates known session ids.
func (s *Service) ListSessions() ([]string, error) {
	return s.registry.List()
}
