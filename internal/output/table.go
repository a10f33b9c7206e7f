package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/adforge/adforge/internal/core"
	"github.com/adforge/adforge/internal/trends"
)

// TableFormatter renders results as ASCII tables.
type TableFormatter struct{}

// FormatCreatives renders a creative batch as a table.
func (f *TableFormatter) FormatCreatives(creatives []core.Creative) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Title", "Core Concept", "Content", "Source"})

	for i, c := range creatives {
		index := c.Index
		if index == 0 {
			index = i + 1
		}
		t.AppendRow(table.Row{
			index,
			summarize(c.Title, 24),
			summarize(c.CoreConcept, 30),
			summarize(c.Content, 48),
			creativeSource(c),
		})
	}

	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d creatives", len(creatives)), ""})
	return t.Render(), nil
}

// FormatTopics renders trending topics as a ranked table.
func (f *TableFormatter) FormatTopics(result *trends.TopicsResult) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(topicsHeading(result))
	t.AppendHeader(table.Row{"Rank", "Topic"})

	for i, topic := range result.Topics {
		t.AppendRow(table.Row{i + 1, topic})
	}

	rendered := t.Render()
	if msg := strings.TrimSpace(result.Message); msg != "" {
		rendered += "\n" + msg
	}
	return rendered, nil
}

// FormatDimensions renders the dimension catalog as a table.
func (f *TableFormatter) FormatDimensions(dimensions []core.Dimension) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Name", "Display Name", "Active", "Options"})

	for _, d := range dimensions {
		t.AppendRow(table.Row{
			d.ID,
			d.Name,
			d.DisplayName,
			activeLabel(d.Active),
			len(d.Options),
		})
	}

	return t.Render(), nil
}

func activeLabel(active bool) string {
	if active {
		return "yes"
	}
	return "no"
}
