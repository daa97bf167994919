package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
)

// Summarizer turns an answer path's snippets into a freeform one-liner. It
// is an optional collaborator: Engine.Analyze always emits the structured
// Summary fields regardless of whether a Summarizer is wired or reachable.
type Summarizer interface {
	Summarize(ctx context.Context, query string, snippets []Snippet) (string, error)
}

// OpenAISummarizer delegates the freeform prose to a chat model, reusing the
// openai.NewClient()/Chat.Completions.New call shape already grounded in
// embedder/openai.go (itself grounded on rohankatakam-coderisk's
// internal/agent/llm_client.go).
type OpenAISummarizer struct {
	client openai.Client
	model  openai.ChatModel
}

func NewOpenAISummarizer(model string) *OpenAISummarizer {
	if model == "" {
		model = openai.ChatModelGPT4o
	}
	return &OpenAISummarizer{client: openai.NewClient(), model: model}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, query string, snippets []Snippet) (string, error) {
	if len(snippets) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nCode path:\n", query)
	for _, sn := range snippets {
		fmt.Fprintf(&b, "- %s (%s:%d-%d)\n", sn.NodeID, sn.File, sn.StartLine, sn.EndLine)
	}
	b.WriteString("\nIn one sentence, describe what this path does.")

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(b.String()),
		},
	})
	if err != nil {
		return "", fmt.Errorf("query: openai summarize: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
