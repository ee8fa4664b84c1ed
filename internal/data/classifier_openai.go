package data

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
)

const defaultClassifierModel = "gpt-4o-mini"

// maxClassifiedRunes caps the snippet sent to the model
const maxClassifiedRunes = 4000

// openaiClassifier asks an OpenAI-compatible chat endpoint for the language
type openaiClassifier struct {
	client *openai.Client
	model  string
	labels []string
}

// NewOpenAIClassifier creates a classifier restricted to labels
func NewOpenAIClassifier(apiKey, baseURL, model string, labels []string) repo.Classifier {
	if model == "" {
		model = defaultClassifierModel
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)

	return &openaiClassifier{
		client: openai.NewClientWithConfig(config),
		model:  model,
		labels: sorted,
	}
}

// classifierPrompt returns the system prompt listing the allowed labels
func classifierPrompt(labels []string) string {
	return fmt.Sprintf(`You identify the programming or markup language of a code snippet.

## Allowed labels
%s

## Output
Reply with exactly one line: LABEL CONFIDENCE
- LABEL is one of the allowed labels, copied exactly
- CONFIDENCE is a number between 0 and 1
- If the snippet is not code or matches no label, reply: NONE 0`, strings.Join(labels, ", "))
}

// Classify sends the snippet to the model and parses its one-line answer
func (c *openaiClassifier) Classify(ctx context.Context, text string) (repo.Classification, error) {
	if strings.TrimSpace(text) == "" {
		return repo.Classification{}, repo.ErrClassifierUnavailable
	}
	if runes := []rune(text); len(runes) > maxClassifiedRunes {
		text = string(runes[:maxClassifiedRunes])
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierPrompt(c.labels)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0, // deterministic
		MaxTokens:   20,
	})
	if err != nil {
		return repo.Classification{}, fmt.Errorf("%w: chat completion: %w", repo.ErrClassifierUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return repo.Classification{}, fmt.Errorf("%w: no response choices", repo.ErrClassifierUnavailable)
	}

	return parseClassification(resp.Choices[0].Message.Content, c.labels)
}

// parseClassification reads "LABEL CONFIDENCE". Labels may contain spaces, so
// the confidence is taken from the last field. The label is matched
// case-insensitively against labels and returned in its canonical spelling.
func parseClassification(reply string, labels []string) (repo.Classification, error) {
	line := strings.TrimSpace(reply)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return repo.Classification{}, fmt.Errorf("%w: unparseable reply %q", repo.ErrClassifierUnavailable, reply)
	}

	confidence, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return repo.Classification{}, fmt.Errorf("%w: bad confidence in %q", repo.ErrClassifierUnavailable, reply)
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	label := strings.Trim(strings.Join(fields[:len(fields)-1], " "), "`\"'")
	if strings.EqualFold(label, "NONE") {
		return repo.Classification{}, repo.ErrClassifierUnavailable
	}
	for _, l := range labels {
		if strings.EqualFold(l, label) {
			return repo.Classification{Label: l, Confidence: confidence}, nil
		}
	}
	// Unknown labels still flow back; the resolver ignores unmapped ones
	return repo.Classification{Label: label, Confidence: confidence}, nil
}
