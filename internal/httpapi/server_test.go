package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lcavaliere/horizon/internal/config"
	"github.com/lcavaliere/horizon/internal/ingest"
	"github.com/lcavaliere/horizon/internal/observability"
	"github.com/lcavaliere/horizon/internal/schedule"
	"github.com/lcavaliere/horizon/internal/store"
	"github.com/lcavaliere/horizon/internal/summarize"
)

type stubIngestor struct {
	result ingest.Result
	err    error
	got    ingest.Request
}

func (s *stubIngestor) Run(_ context.Context, req ingest.Request) (ingest.Result, error) {
	s.got = req
	if s.err != nil {
		return ingest.Result{}, s.err
	}
	return s.result, nil
}

func newTestServer(t *testing.T, ing Ingestor, st store.Store, summarizer summarize.Summarizer) *httptest.Server {
	t.Helper()
	if st == nil {
		st = store.NewInMemoryStore()
	}
	if summarizer == nil {
		summarizer = summarize.NewMockSummarizer()
	}
	cfg := config.Config{JWTSecret: "test-secret"}
	metrics := observability.NewMetrics(fmt.Sprintf("test_httpapi_%s_%d", t.Name(), time.Now().UnixNano()))
	srv := New(cfg, ing, schedule.NewService(st), summarizer, metrics, zap.NewNop().Sugar())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func ingestBody() []byte {
	b, _ := json.Marshal(map[string]string{
		"s3_key":             "s3://recordings/session-1.mp4",
		"selected_date":      "2024-03-05",
		"selected_hour":      "9",
		"selected_minute":    "30",
		"selected_therapist": "t-1",
		"user_id":            "p-1",
	})
	return b
}

func TestIngestHappyPathReturnsSessionID(t *testing.T) {
	ing := &stubIngestor{result: ingest.Result{
		SessionID:  "session-xyz",
		Time:       "09:30",
		Transcript: "hello",
		Summary:    summarize.Summary{Text: "sum", KeyPoints: []string{}, Insights: []string{}},
	}}
	ts := newTestServer(t, ing, nil, nil)

	res, err := http.Post(ts.URL+"/v1/sessions/ingest", "application/json", bytes.NewReader(ingestBody()))
	if err != nil {
		t.Fatalf("ingest request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["session_id"] != "session-xyz" {
		t.Fatalf("session_id = %v, want the persisted id", out["session_id"])
	}
	if ing.got.S3Key != "s3://recordings/session-1.mp4" {
		t.Fatalf("request not forwarded to the pipeline: %+v", ing.got)
	}
}

func TestIngestValidationFailureIs400(t *testing.T) {
	ing := &stubIngestor{err: &ingest.Error{
		Stage: ingest.StageValidating,
		Kind:  ingest.KindValidation,
		Err:   errors.New("missing required field user_id"),
	}}
	ts := newTestServer(t, ing, nil, nil)

	res, err := http.Post(ts.URL+"/v1/sessions/ingest", "application/json", bytes.NewReader([]byte(`{}`)))
	if err != nil {
		t.Fatalf("ingest request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestIngestInternalFailureIsGeneric500(t *testing.T) {
	ing := &stubIngestor{err: &ingest.Error{
		Stage: ingest.StageTranscribing,
		Kind:  ingest.KindProvider,
		Err:   errors.New("whisper HTTP 500: secret provider detail"),
	}}
	ts := newTestServer(t, ing, nil, nil)

	res, err := http.Post(ts.URL+"/v1/sessions/ingest", "application/json", bytes.NewReader(ingestBody()))
	if err != nil {
		t.Fatalf("ingest request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusInternalServerError)
	}

	var out errorResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Error != "failed to process recording" {
		t.Fatalf("error = %q, want the generic message", out.Error)
	}
}

func TestScheduleWithoutTokenIsEmptyList(t *testing.T) {
	st := store.NewInMemoryStore()
	if _, err := st.CreateSession(context.Background(), store.SessionRecord{TherapistID: "t-1", PatientID: "p-1"}); err != nil {
		t.Fatalf("CreateSession error = %v", err)
	}
	ts := newTestServer(t, &stubIngestor{}, st, nil)

	res, err := http.Get(ts.URL + "/v1/schedule")
	if err != nil {
		t.Fatalf("schedule request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var entries []schedule.Entry
	if err := json.NewDecoder(res.Body).Decode(&entries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %v, want empty list without auth", entries)
	}
}

func TestScheduleWithTokenFilters(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemoryStore()
	if err := st.PutUser(ctx, store.User{ID: "p-bob", FirstName: "Bob", LastName: "Jones"}); err != nil {
		t.Fatalf("PutUser error = %v", err)
	}
	if _, err := st.CreateSession(ctx, store.SessionRecord{
		TherapistID: "t-1",
		PatientID:   "p-bob",
		SessionDate: time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC),
		Status:      "completed",
	}); err != nil {
		t.Fatalf("CreateSession error = %v", err)
	}
	ts := newTestServer(t, &stubIngestor{}, st, nil)

	token, err := GenerateToken("test-secret", "t-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/schedule?q=bob&status=completed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("schedule request error = %v", err)
	}
	defer res.Body.Close()

	var entries []schedule.Entry
	if err := json.NewDecoder(res.Body).Decode(&entries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(entries) != 1 || entries[0].PatientName != "Bob Jones" {
		t.Fatalf("entries = %+v, want Bob's completed session", entries)
	}
}

func TestScheduleRejectsBadDateParam(t *testing.T) {
	ts := newTestServer(t, &stubIngestor{}, nil, nil)

	token, err := GenerateToken("test-secret", "t-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/schedule?date=not-a-date", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("schedule request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestSummariesEndpoint(t *testing.T) {
	mock := summarize.NewMockSummarizer()
	mock.Result = summarize.Summary{Text: "endpoint summary", KeyPoints: []string{"k"}}
	ts := newTestServer(t, &stubIngestor{}, nil, mock)

	body, _ := json.Marshal(map[string]string{"text": "long transcript"})
	res, err := http.Post(ts.URL+"/v1/summaries", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("summaries request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var out summarize.Summary
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Text != "endpoint summary" {
		t.Fatalf("Text = %q", out.Text)
	}
}

func TestSummariesRejectsBlankText(t *testing.T) {
	ts := newTestServer(t, &stubIngestor{}, nil, nil)

	body, _ := json.Marshal(map[string]string{"text": "   "})
	res, err := http.Post(ts.URL+"/v1/summaries", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("summaries request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestSummariesProviderFailureIs502(t *testing.T) {
	mock := summarize.NewMockSummarizer()
	mock.Err = errors.New("model down")
	ts := newTestServer(t, &stubIngestor{}, nil, mock)

	body, _ := json.Marshal(map[string]string{"text": "transcript"})
	res, err := http.Post(ts.URL+"/v1/summaries", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("summaries request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadGateway)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, &stubIngestor{}, nil, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		res, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d", path, res.StatusCode, http.StatusOK)
		}
	}
}
