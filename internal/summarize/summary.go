package summarize

import "context"

// Summary is the structured output derived from a session transcript.
type Summary struct {
	Text      string   `json:"text"`
	KeyPoints []string `json:"key_points"`
	Insights  []string `json:"insights"`
}

// Summarizer produces a structured summary for a full transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (Summary, error)
}

// normalize guarantees the list fields are non-nil. A provider omitting
// keyPoints or insights yields empty lists, never null.
func normalize(s Summary) Summary {
	if s.KeyPoints == nil {
		s.KeyPoints = []string{}
	}
	if s.Insights == nil {
		s.Insights = []string{}
	}
	return s
}
