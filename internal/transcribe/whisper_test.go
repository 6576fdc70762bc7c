package transcribe

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempMedia(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.mp4")
	if err := os.WriteFile(path, []byte("fake-mp4-bytes"), 0o600); err != nil {
		t.Fatalf("write media fixture: %v", err)
	}
	return path
}

func TestWhisperClientTranscribe(t *testing.T) {
	var gotAuth, gotModel string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
		} else {
			f.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": " hello from the session "}`))
	}))
	defer ts.Close()

	c := NewWhisperClient(WhisperConfig{APIURL: ts.URL, APIKey: "sk-test", Model: "whisper-1"})
	text, err := c.Transcribe(context.Background(), writeTempMedia(t))
	if err != nil {
		t.Fatalf("Transcribe error = %v", err)
	}
	if text != "hello from the session" {
		t.Fatalf("text = %q, want trimmed transcript", text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("Authorization = %q, want bearer key", gotAuth)
	}
	if gotModel != "whisper-1" {
		t.Fatalf("model field = %q, want whisper-1", gotModel)
	}
}

func TestWhisperClientNonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewWhisperClient(WhisperConfig{APIURL: ts.URL, APIKey: "sk-test"})
	_, err := c.Transcribe(context.Background(), writeTempMedia(t))
	if err == nil {
		t.Fatalf("Transcribe = nil error, want provider error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error = %v, want status code in message", err)
	}
}

func TestWhisperClientMissingMedia(t *testing.T) {
	c := NewWhisperClient(WhisperConfig{APIURL: "http://unused.invalid", APIKey: "sk-test"})
	if _, err := c.Transcribe(context.Background(), filepath.Join(t.TempDir(), "gone.mp4")); err == nil {
		t.Fatalf("Transcribe = nil error, want read error")
	}
}

func TestWhisperClientUploadsMediaIntact(t *testing.T) {
	media := bytes.Repeat([]byte("0123456789abcdef"), 64<<10)
	path := filepath.Join(t.TempDir(), "long-session.mp4")
	if err := os.WriteFile(path, media, 0o600); err != nil {
		t.Fatalf("write media fixture: %v", err)
	}

	var got []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
		} else {
			got, err = io.ReadAll(f)
			f.Close()
			if err != nil {
				t.Errorf("read file part: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "ok"}`))
	}))
	defer ts.Close()

	c := NewWhisperClient(WhisperConfig{APIURL: ts.URL, APIKey: "sk-test", Model: "whisper-1"})
	if _, err := c.Transcribe(context.Background(), path); err != nil {
		t.Fatalf("Transcribe error = %v", err)
	}
	if !bytes.Equal(got, media) {
		t.Fatalf("uploaded %d bytes, want the %d-byte recording unchanged", len(got), len(media))
	}
}
