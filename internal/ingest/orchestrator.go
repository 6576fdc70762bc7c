package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lcavaliere/horizon/internal/blob"
	"github.com/lcavaliere/horizon/internal/observability"
	"github.com/lcavaliere/horizon/internal/store"
	"github.com/lcavaliere/horizon/internal/summarize"
	"github.com/lcavaliere/horizon/internal/transcribe"
)

// Result is the success payload of one ingestion run.
type Result struct {
	SessionID  string            `json:"session_id"`
	Time       string            `json:"time"`
	Transcript string            `json:"transcript"`
	Summary    summarize.Summary `json:"summary"`
}

// Orchestrator sequences one ingestion request through
// validate -> fetch -> transcribe -> summarize -> persist.
// Each run is strictly sequential; no stage is retried or re-entered, and a
// failure in any stage short-circuits the rest. Completed work is not cached
// for later retries.
type Orchestrator struct {
	fetcher     blob.Fetcher
	transcriber transcribe.Transcriber
	summarizer  summarize.Summarizer
	sessions    store.Store
	metrics     *observability.Metrics
	log         *zap.SugaredLogger
}

func NewOrchestrator(
	fetcher blob.Fetcher,
	transcriber transcribe.Transcriber,
	summarizer summarize.Summarizer,
	sessions store.Store,
	metrics *observability.Metrics,
	log *zap.SugaredLogger,
) *Orchestrator {
	return &Orchestrator{
		fetcher:     fetcher,
		transcriber: transcriber,
		summarizer:  summarizer,
		sessions:    sessions,
		metrics:     metrics,
		log:         log,
	}
}

func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, o.fail(StageValidating, KindValidation, err)
	}

	start := time.Now()
	mediaPath, cleanup, err := o.fetcher.Fetch(ctx, req.S3Key)
	if cleanup != nil {
		// Release the transient media file on every exit path, not just success.
		defer cleanup()
	}
	if err != nil {
		kind := KindTransfer
		if errors.Is(err, blob.ErrNotFound) {
			kind = KindNotFound
		}
		return Result{}, o.fail(StageFetching, kind, fmt.Errorf("fetch recording: %w", err))
	}
	o.metrics.ObserveStage(string(StageFetching), time.Since(start))

	start = time.Now()
	transcript, err := o.transcriber.Transcribe(ctx, mediaPath)
	if err != nil {
		return Result{}, o.fail(StageTranscribing, KindProvider, fmt.Errorf("transcribe recording: %w", err))
	}
	o.metrics.ObserveStage(string(StageTranscribing), time.Since(start))
	o.log.Debugw("transcription complete", "key", req.S3Key, "chars", len(transcript))

	start = time.Now()
	summary, err := o.summarizer.Summarize(ctx, transcript)
	if err != nil {
		return Result{}, o.fail(StageSummarizing, KindSummary, fmt.Errorf("summarize transcript: %w", err))
	}
	o.metrics.ObserveStage(string(StageSummarizing), time.Since(start))

	record, displayTime, err := BuildRecord(req, transcript, summary)
	if err != nil {
		return Result{}, o.fail(StageValidating, KindValidation, err)
	}

	start = time.Now()
	sessionID, err := o.sessions.CreateSession(ctx, record)
	if err != nil {
		// All the expensive upstream work is discarded here; the caller must
		// resubmit the whole request.
		return Result{}, o.fail(StagePersisting, KindStore, fmt.Errorf("persist session: %w", err))
	}
	o.metrics.ObserveStage(string(StagePersisting), time.Since(start))

	o.metrics.IngestRequests.WithLabelValues("success").Inc()
	o.log.Infow("session ingested",
		"session_id", sessionID,
		"therapist_id", req.SelectedTherapist,
		"patient_id", req.UserID,
	)

	return Result{
		SessionID:  sessionID,
		Time:       displayTime,
		Transcript: transcript,
		Summary:    summary,
	}, nil
}

func (o *Orchestrator) fail(stage Stage, kind Kind, err error) error {
	o.metrics.IngestRequests.WithLabelValues("failure").Inc()
	o.metrics.StageFailures.WithLabelValues(string(stage), string(kind)).Inc()
	o.log.Errorw("ingestion failed", "stage", stage, "kind", kind, "error", err)

	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Stage: stage, Kind: kind, Err: err}
}
