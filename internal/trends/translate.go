package trends

import (
	"context"
	"fmt"
	"strings"

	"github.com/adforge/adforge/internal/ailink"
)

const translatePromptSlug = "topic-translation"

// Completer runs plain-text prompts.
type Completer interface {
	Complete(ctx context.Context, req ailink.CompleteRequest) (*ailink.CompleteResponse, error)
}

// AITranslator translates topics through the LLM layer using the
// topic-translation prompt.
type AITranslator struct {
	AI    Completer
	Model string
}

// TranslateTopics sends the topics as a numbered list and parses the reply
// line by line. The result always has exactly len(topics) entries; missing
// translations are padded with the originals.
func (t *AITranslator) TranslateTopics(ctx context.Context, topics []string, sourceLanguage string) ([]string, error) {
	if t == nil || t.AI == nil {
		return nil, fmt.Errorf("translator not configured")
	}
	if len(topics) == 0 {
		return nil, nil
	}

	numbered := make([]string, 0, len(topics))
	for i, topic := range topics {
		numbered = append(numbered, fmt.Sprintf("%d. %s", i+1, topic))
	}

	variables := map[string]string{
		"count":  fmt.Sprintf("%d", len(topics)),
		"topics": strings.Join(numbered, "\n"),
	}
	if strings.TrimSpace(sourceLanguage) != "" {
		variables["source_language"] = sourceLanguage
	}

	resp, err := t.AI.Complete(ctx, ailink.CompleteRequest{
		Role:       "translate",
		PromptSlug: translatePromptSlug,
		Variables:  variables,
		Model:      t.Model,
	})
	if err != nil {
		return nil, err
	}

	translations := parseNumberedReply(resp.Text)

	// The model occasionally drops or merges lines. Pad with originals and
	// truncate so the caller can zip results against the inputs.
	if len(translations) < len(topics) {
		translations = append(translations, topics[len(translations):]...)
	}
	return translations[:len(topics)], nil
}

// parseNumberedReply strips list prefixes ("1. ", "- ", "• ") from each
// non-empty line.
func parseNumberedReply(text string) []string {
	var result []string
	for _, line := range strings.Split(text, "\n") {
		cleaned := strings.TrimSpace(line)
		cleaned = strings.TrimLeft(cleaned, "0123456789.- •\t")
		cleaned = strings.TrimSpace(cleaned)
		if cleaned != "" {
			result = append(result, cleaned)
		}
	}
	return result
}
