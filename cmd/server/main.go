package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/taskdraft/internal/answer"
	"github.com/dgallion1/taskdraft/internal/api"
	"github.com/dgallion1/taskdraft/internal/config"
	"github.com/dgallion1/taskdraft/internal/llm"
	"github.com/dgallion1/taskdraft/internal/parser"
	"github.com/dgallion1/taskdraft/internal/pipeline"
	"github.com/dgallion1/taskdraft/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage and LLM providers.
	docs, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}

	stats := llm.NewStats(time.Hour)
	chain, err := llm.NewFromConfig(ctx, llmConfig(cfg), log, stats)
	if err != nil {
		log.Error("initialize llm providers", "error", err)
		os.Exit(1)
	}
	if chain.Len() == 0 {
		log.Error("no llm provider configured")
		os.Exit(1)
	}

	drafter := answer.NewDrafter(chain, answer.Options{
		MaxTokens:      cfg.DraftMaxTokens,
		MaxBatchTokens: cfg.DraftMaxBatchTokens,
		Temperature:    cfg.DraftTemperature,
		Delay:          cfg.DraftDelay,
		MaxSourceChars: cfg.MaxSourceChars,
	}, log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, drafter, docs, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(api.Deps{
		Docs:    docs,
		Drafter: drafter,
		Jobs:    orch,
		Stats:   stats,
		Parser: parser.Options{
			PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
			Vision:               chain,
		},
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // single-answer drafting is synchronous
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		docs.Close()
	}()

	log.Info("starting taskdraft", "port", cfg.Port, "providers", chain.Name())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func llmConfig(cfg config.Config) llm.Config {
	retry := llm.DefaultRetryConfig()
	retry.MaxAttempts = cfg.LLMMaxAttempts
	retry.RateLimitWait = cfg.LLMRateLimitWait

	return llm.Config{
		Order:     cfg.ProviderOrder,
		Groq:      llm.OpenAIConfig{APIKey: cfg.GroqAPIKey, Model: cfg.GroqModel},
		Gemini:    llm.GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel},
		OpenAI:    llm.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel},
		Anthropic: llm.AnthropicConfig{APIKey: cfg.AnthropicAPIKey, Model: cfg.AnthropicModel},
		Retry:     retry,
	}
}
