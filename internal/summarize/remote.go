package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RemoteSummarizer forwards transcripts to a sibling summarization endpoint.
// The target address always comes from configuration.
type RemoteSummarizer struct {
	url    string
	client *http.Client
}

func NewRemoteSummarizer(url string) *RemoteSummarizer {
	return &RemoteSummarizer{
		url: strings.TrimSpace(url),
		// No client timeout: summarizing a long transcript takes whatever the
		// sibling endpoint allows, and that limit is inherited as-is.
		client: &http.Client{},
	}
}

func (s *RemoteSummarizer) Summarize(ctx context.Context, transcript string) (Summary, error) {
	payload, err := json.Marshal(map[string]string{"text": transcript})
	if err != nil {
		return Summary{}, fmt.Errorf("marshal summary request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return Summary{}, fmt.Errorf("create summary request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Summary{}, fmt.Errorf("send summary request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Summary{}, fmt.Errorf("read summary response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Summary{}, fmt.Errorf("summary HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return ParsePayload(body)
}
