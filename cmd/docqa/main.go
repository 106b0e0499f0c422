package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"docqa/internal/answer"
	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/embedding/openai"
	"docqa/internal/extract"
	llmopenai "docqa/internal/llm/openai"
	"docqa/internal/retrieval"
	"docqa/internal/service"
	"docqa/internal/session"
	"docqa/internal/summarize"
	"docqa/internal/tui"
	"docqa/internal/vectorstore/memory"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docqa/config.yaml if not provided)")
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: docqa [--config=config.yaml] <file.pdf | https://...>")
		os.Exit(1)
	}
	source := args[0]

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	emb, err := openai.NewClient(openai.Config{
		BaseURL:   cfg.Embedder.BaseURL,
		APIKeyEnv: cfg.Embedder.APIKeyEnv,
		Model:     cfg.Embedder.Model,
		Dimension: cfg.Embedder.Dimension,
		Timeout:   time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	llm, err := llmopenai.NewClient(llmopenai.Config{
		APIKeyEnv: cfg.LLM.APIKeyEnv,
		Model:     cfg.LLM.Model,
		BaseURL:   cfg.LLM.BaseURL,
	})
	if err != nil {
		log.Fatalf("llm init failed: %v", err)
	}

	// Chat sessions are throwaway; the in-memory store avoids littering the
	// data directory with one-shot indexes.
	provider := memory.NewProvider(emb)

	var summarizer summarize.Summarizer
	switch cfg.Summarizer.Type {
	case "llm", "":
		summarizer = summarize.NewLLM(llm)
	case "frequency":
		summarizer = summarize.NewFrequency(cfg.Summarizer.MaxSentences)
	default:
		log.Fatalf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	svc := service.New(service.Config{
		Extractor:  extract.New(),
		Chunker:    chunker.New(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap),
		Provider:   provider,
		Registry:   session.NewRegistry(provider),
		Engine:     retrieval.NewEngine(cfg.Retrieval.TopK),
		Synth:      answer.New(llm),
		Summarizer: summarizer,
		Embedder:   emb,
		LLMName:    llm.Name(),
	})

	ctx := context.Background()
	var ingested *service.IngestResult
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		ingested, err = svc.IngestURL(ctx, source)
	} else {
		ingested, err = svc.IngestFile(ctx, source)
	}
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}

	summary := ingested.Summary
	if summary == "" {
		summary = fmt.Sprintf("%s (%d chunks)", ingested.Stats.Source, ingested.Stats.NumChunks)
	}

	m := tui.New(svc, ingested.SessionID, summary)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
