package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"docqa/internal/answer"
	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/embedding/openai"
	"docqa/internal/extract"
	llmopenai "docqa/internal/llm/openai"
	"docqa/internal/retrieval"
	"docqa/internal/server"
	"docqa/internal/service"
	"docqa/internal/session"
	"docqa/internal/summarize"
	"docqa/internal/vectorstore"
	"docqa/internal/vectorstore/memory"
	"docqa/internal/vectorstore/sqlite"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, addr string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docqa/config.yaml if not provided)")
	flag.StringVar(&addr, "addr", "", "Listen address (overrides config)")
	flag.Parse()

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
	if addr != "" {
		cfg.Server.Addr = addr
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

	var provider vectorstore.Provider
	switch cfg.Store.Type {
	case "sqlite", "":
		p, err := sqlite.NewProvider(cfg.Store.DataDir, emb)
		if err != nil {
			log.Fatalf("sqlite store init failed: %v", err)
		}
		provider = p
	case "memory":
		provider = memory.NewProvider(emb)
	default:
		log.Fatalf("unknown store: %s", cfg.Store.Type)
	}

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

	srv, err := server.New(svc, cfg.Server.UploadsDir)
	if err != nil {
		log.Fatalf("server init failed: %v", err)
	}

	log.Printf("listening on %s (store=%s, embedder=%s, llm=%s)",
		cfg.Server.Addr, provider.Name(), emb.Name(), llm.Name())
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
