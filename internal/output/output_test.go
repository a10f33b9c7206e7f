package output

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adforge/adforge/internal/core"
	"github.com/adforge/adforge/internal/trends"
)

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func sampleCreatives() []core.Creative {
	return []core.Creative{
		{
			Index:       1,
			Title:       "极限反杀",
			CoreConcept: "绝境翻盘的爽感",
			Content:     "残血主角在最后一秒完成五杀，画面定格在伤害数字上。",
			Keywords:    []string{"反杀", "五杀"},
			AIGenerated: true,
		},
		{
			Index:             2,
			Title:             "上头挑战",
			Content:           "路人挑战三分钟通关，结局出乎意料。",
			FallbackGenerated: true,
		},
	}
}

func TestFormatCreatives(t *testing.T) {
	creatives := sampleCreatives()

	tableRendered, err := NewFormatter(FormatTable).FormatCreatives(creatives)
	require.NoError(t, err)
	require.Contains(t, tableRendered, "TITLE")
	require.Contains(t, tableRendered, "极限反杀")
	require.Contains(t, tableRendered, "fallback")
	require.Contains(t, tableRendered, "2 CREATIVES")

	jsonRendered, err := NewFormatter(FormatJSON).FormatCreatives(creatives)
	require.NoError(t, err)
	require.Contains(t, jsonRendered, "\"count\": 2")
	require.Contains(t, jsonRendered, "\"title\": \"极限反杀\"")

	markdownRendered, err := NewFormatter(FormatMarkdown).FormatCreatives(creatives)
	require.NoError(t, err)
	require.Contains(t, markdownRendered, "## Creatives (2)")
	require.Contains(t, markdownRendered, "### 1. 极限反杀")
	require.Contains(t, markdownRendered, "- Source: ai")
	require.Contains(t, markdownRendered, "- Keywords: 反杀, 五杀")
}

func TestFormatTopics(t *testing.T) {
	result := &trends.TopicsResult{
		Topics:        []string{"open world survival", "roguelike deckbuilder"},
		Country:       "US",
		CountryName:   "美国",
		TimeRange:     "now 7-d",
		TimeRangeName: "过去7天",
		Fallback:      true,
	}

	tableRendered, err := NewFormatter(FormatTable).FormatTopics(result)
	require.NoError(t, err)
	require.Contains(t, tableRendered, "美国 (US) - 过去7天 [fallback]")
	require.Contains(t, tableRendered, "open world survival")

	markdownRendered, err := NewFormatter(FormatMarkdown).FormatTopics(result)
	require.NoError(t, err)
	require.Contains(t, markdownRendered, "## 美国 (US) - 过去7天 [fallback]")
	require.Contains(t, markdownRendered, "1. open world survival")

	jsonRendered, err := NewFormatter(FormatJSON).FormatTopics(result)
	require.NoError(t, err)
	require.Contains(t, jsonRendered, "\"fallback\": true")
	require.Contains(t, jsonRendered, "\"country\": \"US\"")
}

func TestFormatDimensions(t *testing.T) {
	dimensions := []core.Dimension{
		{
			ID:          1,
			Name:        "emotion",
			DisplayName: "情感共鸣",
			Active:      true,
			Options:     []core.DimensionOption{{ID: 1, Name: "nostalgia"}, {ID: 2, Name: "thrill"}},
		},
		{
			ID:          2,
			Name:        "visual_hook",
			DisplayName: "视觉钩子",
		},
	}

	tableRendered, err := NewFormatter(FormatTable).FormatDimensions(dimensions)
	require.NoError(t, err)
	require.Contains(t, tableRendered, "emotion")
	require.Contains(t, tableRendered, "情感共鸣")
	require.Contains(t, tableRendered, "yes")

	markdownRendered, err := NewFormatter(FormatMarkdown).FormatDimensions(dimensions)
	require.NoError(t, err)
	require.Contains(t, markdownRendered, "| 1 | emotion | 情感共鸣 | yes | 2 |")
	require.Contains(t, markdownRendered, "| 2 | visual_hook | 视觉钩子 | no | 0 |")
}

func TestMarkdownEscaping(t *testing.T) {
	creatives := []core.Creative{{Index: 1, Title: "pipe|test", Content: "foo|bar"}}

	rendered, err := NewFormatter(FormatMarkdown).FormatCreatives(creatives)
	require.NoError(t, err)
	require.Contains(t, rendered, "pipe\\|test")
	require.Contains(t, rendered, "foo\\|bar")
}

func TestSummarize(t *testing.T) {
	require.Equal(t, "short", summarize("  short  ", 10))
	require.Equal(t, "这是一个很长…", summarize("这是一个很长的标题文本", 6))
}

func TestCreativeSource(t *testing.T) {
	require.Equal(t, "ai", creativeSource(core.Creative{AIGenerated: true}))
	require.Equal(t, "fallback", creativeSource(core.Creative{AIGenerated: true, FallbackGenerated: true}))
	require.Equal(t, "manual", creativeSource(core.Creative{}))
}
