package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const summaryPrompt = `You are a clinical assistant supporting a licensed therapist.
Summarize the following therapy session transcript.
Respond with a single JSON object of the form
{"text": string, "keyPoints": [string], "insights": [string]}.
"text" is a concise narrative summary, "keyPoints" lists the concrete topics
discussed, and "insights" lists observations useful for the therapist's notes.`

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAISummarizer generates summaries with an OpenAI-compatible chat model
// constrained to JSON output.
type OpenAISummarizer struct {
	model llms.Model
}

func NewOpenAISummarizer(cfg OpenAIConfig) (*OpenAISummarizer, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithResponseFormat(&openai.ResponseFormat{Type: "json_object"}),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create summary model: %w", err)
	}
	return &OpenAISummarizer{model: model}, nil
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, transcript string) (Summary, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(summaryPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(transcript)},
		},
	}

	resp, err := s.model.GenerateContent(ctx, messages, llms.WithTemperature(0.2))
	if err != nil {
		return Summary{}, fmt.Errorf("generate summary: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Summary{}, fmt.Errorf("summary model returned no choices")
	}
	return ParsePayload([]byte(resp.Choices[0].Content))
}

// ParsePayload decodes a provider summary document. It accepts both the
// camelCase field names the prompt requests and snake_case equivalents.
func ParsePayload(data []byte) (Summary, error) {
	var payload struct {
		Text           string   `json:"text"`
		Summary        string   `json:"summary"`
		KeyPoints      []string `json:"keyPoints"`
		KeyPointsSnake []string `json:"key_points"`
		Insights       []string `json:"insights"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return Summary{}, fmt.Errorf("decode summary payload: %w", err)
	}

	out := Summary{
		Text:      payload.Text,
		KeyPoints: payload.KeyPoints,
		Insights:  payload.Insights,
	}
	if out.Text == "" {
		out.Text = payload.Summary
	}
	if out.KeyPoints == nil {
		out.KeyPoints = payload.KeyPointsSnake
	}
	if strings.TrimSpace(out.Text) == "" {
		return Summary{}, fmt.Errorf("summary payload has no text")
	}
	return normalize(out), nil
}
