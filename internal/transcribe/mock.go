package transcribe

import "context"

// MockTranscriber is a local fallback used when no provider key is configured.
type MockTranscriber struct {
	Text string
	Err  error
}

func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{Text: "simulated session transcript"}
}

func (m *MockTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}
