package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lcavaliere/horizon/internal/blob"
	"github.com/lcavaliere/horizon/internal/config"
	"github.com/lcavaliere/horizon/internal/httpapi"
	"github.com/lcavaliere/horizon/internal/ingest"
	"github.com/lcavaliere/horizon/internal/observability"
	"github.com/lcavaliere/horizon/internal/schedule"
	"github.com/lcavaliere/horizon/internal/store"
	"github.com/lcavaliere/horizon/internal/summarize"
	"github.com/lcavaliere/horizon/internal/transcribe"
)

type BuildResult struct {
	Config   config.Config
	API      *httpapi.Server
	Metrics  *observability.Metrics
	Sessions store.Store

	// Cleanup should be called on shutdown to release external resources.
	Cleanup func() error
}

// Build wires every component from configuration. All clients are constructed
// here and passed down; nothing holds process-wide state.
func Build(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	sessions, err := store.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("session store init failed: %w", err)
	}

	fetcher, err := buildFetcher(cfg)
	if err != nil {
		_ = sessions.Close()
		return nil, err
	}

	transcriber := buildTranscriber(cfg)

	summarizer, err := buildSummarizer(cfg)
	if err != nil {
		_ = sessions.Close()
		return nil, err
	}

	orchestrator := ingest.NewOrchestrator(fetcher, transcriber, summarizer, sessions, metrics, log)
	api := httpapi.New(cfg, orchestrator, schedule.NewService(sessions), summarizer, metrics, log)

	return &BuildResult{
		Config:   cfg,
		API:      api,
		Metrics:  metrics,
		Sessions: sessions,
		Cleanup:  sessions.Close,
	}, nil
}

func buildFetcher(cfg config.Config) (blob.Fetcher, error) {
	switch cfg.BlobProvider {
	case "supabase":
		return blob.NewSupabaseFetcher(cfg.StorageAPIURL, cfg.StorageAPIKey, cfg.StorageBucket), nil
	case "local":
		return blob.NewLocalFetcher(cfg.BlobLocalDir), nil
	case "mock":
		return blob.NewMockFetcher(), nil
	default:
		return nil, fmt.Errorf("invalid BLOB_PROVIDER: %q", cfg.BlobProvider)
	}
}

func buildTranscriber(cfg config.Config) transcribe.Transcriber {
	if cfg.TranscribeProvider == "mock" {
		return transcribe.NewMockTranscriber()
	}
	return transcribe.NewWhisperClient(transcribe.WhisperConfig{
		APIURL: cfg.WhisperAPIURL,
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.WhisperModel,
	})
}

func buildSummarizer(cfg config.Config) (summarize.Summarizer, error) {
	switch cfg.SummaryProvider {
	case "local":
		s, err := summarize.NewOpenAISummarizer(summarize.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.SummaryAPIBase,
			Model:   cfg.SummaryModel,
		})
		if err != nil {
			return nil, fmt.Errorf("summarizer init failed: %w", err)
		}
		return s, nil
	case "remote":
		return summarize.NewRemoteSummarizer(cfg.SummaryAPIURL), nil
	case "mock":
		return summarize.NewMockSummarizer(), nil
	default:
		return nil, fmt.Errorf("invalid SUMMARY_PROVIDER: %q", cfg.SummaryProvider)
	}
}
