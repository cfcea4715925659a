package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docnav/internal/chunker"
	"docnav/internal/config"
	"docnav/internal/embedding"
	"docnav/internal/errs"
	"docnav/internal/helper"
	"docnav/internal/index"
	"docnav/internal/llmservice"
	"docnav/internal/parser"
	"docnav/internal/rag"
	"docnav/internal/rank"
	"docnav/internal/retry"
	"docnav/internal/storage"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	dataDir := flag.String("data", "", "Directory of documents to index")
	query := flag.String("query", "", "Question to be answered")
	dryRun := flag.Bool("dry-run", false, "Build the index without publishing it")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()
	switch {
	case *dataDir != "" && *query != "":
		log.Fatal().Msg("Please provide either -data to build the index or -query to ask a question, but not both")
	case *dataDir != "":
		buildIndex(ctx, cfg, *dataDir, *dryRun)
	case *query != "":
		answerQuestion(ctx, cfg, *query)
	default:
		log.Fatal().Msg("Please provide either -data to build the index or -query to ask a question")
	}
}

func retryPolicy(cfg *config.Config) retry.Policy {
	return retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay(),
		MaxDelay:    cfg.Retry.MaxDelay(),
	}
}

func buildIndex(ctx context.Context, cfg *config.Config, dataDir string, dryRun bool) {
	docs, err := parser.LoadDir(dataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading documents")
	}
	if len(docs) == 0 {
		log.Fatal().Str("dir", dataDir).Msg("No supported documents found")
	}
	log.Info().Int("documents", len(docs)).Msg("Documents loaded")

	ch, err := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid chunking configuration")
	}

	embedder, err := embedding.NewAdapter(cfg.EmbedLLM, retryPolicy(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing storage")
	}

	builder := index.NewBuilder(ch, embedder, store, cfg.Storage.IndexKey, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)

	if dryRun {
		artifact, err := builder.Build(ctx, docs)
		if err != nil {
			log.Fatal().Err(err).Msg("Error building index")
		}
		helper.PrettyPrint(artifact.Metadata)
		return
	}

	if _, err := builder.Run(ctx, docs); err != nil {
		log.Fatal().Err(err).Msg("Error building index")
	}
}

func answerQuestion(ctx context.Context, cfg *config.Config, query string) {
	policy := retryPolicy(cfg)

	embedder, err := embedding.NewAdapter(cfg.EmbedLLM, policy)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	generator, err := llmservice.NewClient(cfg.InferenceLLM, policy)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing generator")
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing storage")
	}

	loader := index.NewLoader(store, cfg.Storage.IndexKey, cfg.EmbedLLM.Dimension)
	engine := rag.NewRAG(embedder, loader, rank.New(cfg.RAG.Ranker), generator, rag.Options{
		TopK:            cfg.RAG.TopK,
		MaxContextChars: cfg.RAG.MaxContextChars,
	})

	answer, err := engine.AnswerQuestion(ctx, query)
	if err != nil {
		log.Error().Err(err).Msg("Error answering question")
		helper.PrettyPrint(errs.Response(err))
		os.Exit(1)
	}

	helper.PrettyPrint(answer)
}
