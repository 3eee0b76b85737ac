package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdfqa/internal/chunker"
	"pdfqa/internal/config"
	"pdfqa/internal/embedding"
	"pdfqa/internal/helper"
	"pdfqa/internal/rag"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Str("run", helper.NewRunID()).Logger()

	_ = godotenv.Load()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(1)
	}
	pdfPath := flag.Arg(0)
	question := flag.Arg(1)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg.RAG).Msg("Loaded config")

	// Model handles are initialized once here; failure aborts before any
	// pipeline stage runs.
	segmenter, err := chunker.NewEnglishSegmenter()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading sentence model")
	}

	embedClient, err := newEmbedClient(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	if dir := filepath.Dir(cfg.RAG.IndexPath); dir != "." {
		if err := helper.CreateFolder(dir); err != nil {
			log.Fatal().Err(err).Msg("Error creating index folder")
		}
	}

	pipeline := rag.NewPipeline(
		chunker.NewChunker(segmenter, cfg.RAG.MinChunkLength, cfg.RAG.MaxChunkLength, cfg.RAG.MaxInputLength),
		embedding.NewAdapter(embedClient),
		newGenerator(cfg),
		&cfg.RAG,
	)

	answer, err := pipeline.Run(context.Background(), pdfPath, question)
	if err != nil {
		log.Error().Err(err).Msg("Pipeline failed")
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nGenerated Answer:\n%s\n", answer.Content)
	fmt.Println("\nCited Context:")
	for _, c := range answer.Context {
		fmt.Printf("\tSource %d: %s\n", c.Index, c.Content)
	}
}

func newEmbedClient(llmConfig *config.LLMConfig) (embedding.Client, error) {
	switch llmConfig.Provider {
	case "openai", "openrouter":
		return embedding.NewOpenAIEmbedder(llmConfig)
	default:
		return embedding.NewOllamaEmbedder(llmConfig)
	}
}

func newGenerator(cfg *config.Config) rag.Generator {
	if cfg.InferLLM.Provider == "langchain" {
		return rag.NewLangchainGenerator(&cfg.InferLLM, &cfg.Generation, cfg.RAG.CiteTopK)
	}
	return rag.NewOpenRouterGenerator(&cfg.InferLLM, &cfg.Generation, cfg.RAG.CiteTopK)
}

func usage() {
	fmt.Println("Usage: pdfqa [-config path] <path_to_pdf> \"<question>\"")
}
