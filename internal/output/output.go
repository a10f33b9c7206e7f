package output

import (
	"fmt"
	"strings"

	"github.com/adforge/adforge/internal/core"
	"github.com/adforge/adforge/internal/trends"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter renders domain results for the CLI.
type Formatter interface {
	FormatCreatives(creatives []core.Creative) (string, error)
	FormatTopics(result *trends.TopicsResult) (string, error)
	FormatDimensions(dimensions []core.Dimension) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown):
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// summarize truncates long cell text by rune count.
func summarize(value string, max int) string {
	trimmed := strings.TrimSpace(value)
	runes := []rune(trimmed)
	if len(runes) <= max {
		return trimmed
	}
	return string(runes[:max]) + "…"
}

func creativeSource(c core.Creative) string {
	switch {
	case c.FallbackGenerated:
		return "fallback"
	case c.AIGenerated:
		return "ai"
	default:
		return "manual"
	}
}

func topicsHeading(result *trends.TopicsResult) string {
	if result == nil {
		return ""
	}
	heading := fmt.Sprintf("%s (%s) - %s", result.CountryName, result.Country, result.TimeRangeName)
	if result.Fallback {
		heading += " [fallback]"
	}
	if result.Translated {
		heading += " [translated]"
	}
	return heading
}
