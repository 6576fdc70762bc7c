package summarize

import "context"

// MockSummarizer is a local fallback used when no provider is configured.
type MockSummarizer struct {
	Result Summary
	Err    error
}

func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{
		Result: Summary{
			Text:      "simulated session summary",
			KeyPoints: []string{},
			Insights:  []string{},
		},
	}
}

func (m *MockSummarizer) Summarize(_ context.Context, _ string) (Summary, error) {
	if m.Err != nil {
		return Summary{}, m.Err
	}
	return normalize(m.Result), nil
}
