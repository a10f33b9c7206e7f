package output

import (
	"fmt"
	"strings"

	"github.com/adforge/adforge/internal/core"
	"github.com/adforge/adforge/internal/trends"
)

// MarkdownFormatter renders results as markdown.
type MarkdownFormatter struct{}

// FormatCreatives renders a creative batch as Markdown sections.
func (f *MarkdownFormatter) FormatCreatives(creatives []core.Creative) (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Creatives (%d)\n", len(creatives)))

	for i, c := range creatives {
		index := c.Index
		if index == 0 {
			index = i + 1
		}
		sb.WriteString(fmt.Sprintf("\n### %d. %s\n\n", index, escapeMarkdownCell(c.Title)))
		if c.CoreConcept != "" {
			sb.WriteString(fmt.Sprintf("**Core concept**: %s\n\n", escapeMarkdownCell(c.CoreConcept)))
		}
		sb.WriteString(escapeMarkdownCell(c.Content) + "\n")
		if c.SceneDescription != "" {
			sb.WriteString(fmt.Sprintf("\n- Scene: %s\n", escapeMarkdownCell(c.SceneDescription)))
		}
		if c.CameraLighting != "" {
			sb.WriteString(fmt.Sprintf("- Camera & lighting: %s\n", escapeMarkdownCell(c.CameraLighting)))
		}
		if c.ColorProps != "" {
			sb.WriteString(fmt.Sprintf("- Color & props: %s\n", escapeMarkdownCell(c.ColorProps)))
		}
		if len(c.Keywords) > 0 {
			sb.WriteString(fmt.Sprintf("- Keywords: %s\n", escapeMarkdownCell(strings.Join(c.Keywords, ", "))))
		}
		sb.WriteString(fmt.Sprintf("- Source: %s\n", creativeSource(c)))
	}

	return sb.String(), nil
}

// FormatTopics renders a topics result as a Markdown list.
func (f *MarkdownFormatter) FormatTopics(result *trends.TopicsResult) (string, error) {
	if result == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(topicsHeading(result))))
	for i, topic := range result.Topics {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, escapeMarkdownCell(topic)))
	}
	if msg := strings.TrimSpace(result.Message); msg != "" {
		sb.WriteString("\n" + escapeMarkdownCell(msg) + "\n")
	}
	return sb.String(), nil
}

// FormatDimensions renders the dimension catalog as a Markdown table.
func (f *MarkdownFormatter) FormatDimensions(dimensions []core.Dimension) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Dimensions\n\n")
	sb.WriteString("| ID | Name | Display Name | Active | Options |\n")
	sb.WriteString("|----|------|--------------|--------|--------|\n")

	for _, d := range dimensions {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %d |\n",
			d.ID,
			escapeMarkdownCell(d.Name),
			escapeMarkdownCell(d.DisplayName),
			activeLabel(d.Active),
			len(d.Options),
		))
	}

	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
