package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/db"
	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/ingestion"
	"github.com/jonathan/resume-parser/internal/llm"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/resume"
)

// app holds the components shared by serve and extract.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  llm.Client
	db      *db.DB
	service *resume.Service
}

// newApp wires configuration, logging, the model client, the optional run
// store and the extraction service.
func newApp(ctx context.Context, configPath, source string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.IsProduction(), cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	llmConfig := llm.DefaultConfig()
	if cfg.LLMModel != "" {
		llmConfig = llmConfig.WithModel(llm.TierStandard, cfg.LLMModel)
	}
	client, err := llm.NewClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, client: client}

	opts := []resume.Option{
		resume.WithLogger(logger),
		resume.WithModel(llmConfig.GetModel(llm.TierStandard)),
		resume.WithSource(source),
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			a.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
		a.db = database
		opts = append(opts, resume.WithRecorder(database))
	}

	store, err := ingestion.NewTempStore(cfg.UploadDir)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.service = resume.NewService(store, ingestion.NewPDFExtractor(), extraction.NewExtractor(client), opts...)
	return a, nil
}

// Close releases the model client and the database pool.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.client != nil {
		_ = a.client.Close()
	}
	_ = a.logger.Sync()
}
