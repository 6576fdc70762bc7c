package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type WhisperConfig struct {
	APIURL string
	APIKey string
	Model  string
}

// WhisperClient submits media to an OpenAI-compatible transcription endpoint.
// The whole file is sent in one multipart request; no chunking, no partials.
type WhisperClient struct {
	cfg    WhisperConfig
	client *http.Client
}

func NewWhisperClient(cfg WhisperConfig) *WhisperClient {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "whisper-1"
	}
	return &WhisperClient{
		cfg: cfg,
		// No client timeout: transcription of long recordings takes whatever
		// the provider allows, and that limit is inherited as-is.
		client: &http.Client{},
	}
}

func (c *WhisperClient) Transcribe(ctx context.Context, mediaPath string) (string, error) {
	media, err := os.Open(mediaPath)
	if err != nil {
		return "", fmt.Errorf("open media file: %w", err)
	}
	defer media.Close()

	// Stream the media straight into the request body; session recordings are
	// too large to hold in memory.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		fw, err := mw.CreateFormFile("file", filepath.Base(mediaPath))
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(fw, media); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = mw.WriteField("model", c.cfg.Model)
		_ = mw.WriteField("response_format", "json")
		_ = pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}
	return strings.TrimSpace(out.Text), nil
}
