package llm

import (
	"context"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiStreamer is a thin wrapper around the official genai client. It
// only handles the API call itself; role routing and defaults are the
// Registry's concern.
type GeminiStreamer struct {
	cli *genai.Client
}

// NewGeminiStreamer creates a gemini provider. The genai client reads its
// API key from the environment.
func NewGeminiStreamer(ctx context.Context) (*GeminiStreamer, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GeminiStreamer{cli: cli}, nil
}

func (g *GeminiStreamer) Name() string { return "gemini" }
func (g *GeminiStreamer) Close() error { return nil }

// Stream sends the prompt and forwards each response increment to
// onChunk, returning the accumulated text.
func (g *GeminiStreamer) Stream(ctx context.Context, model, prompt string, onChunk func(string)) (string, error) {
	contents := []*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}

	var full strings.Builder
	for resp, err := range g.cli.Models.GenerateContentStream(ctx, model, contents, nil) {
		if err != nil {
			return "", err
		}
		chunk := responseText(resp)
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	return full.String(), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
