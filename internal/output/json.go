package output

import (
	"encoding/json"

	"github.com/adforge/adforge/internal/core"
	"github.com/adforge/adforge/internal/trends"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatCreatives renders a creative batch as JSON.
func (f *JSONFormatter) FormatCreatives(creatives []core.Creative) (string, error) {
	return f.marshal(map[string]any{
		"creatives": creatives,
		"count":     len(creatives),
	})
}

// FormatTopics renders a topics result as JSON.
func (f *JSONFormatter) FormatTopics(result *trends.TopicsResult) (string, error) {
	if result == nil {
		return "", nil
	}
	return f.marshal(map[string]any{
		"topics":          result.Topics,
		"country":         result.Country,
		"country_name":    result.CountryName,
		"time_range":      result.TimeRange,
		"time_range_name": result.TimeRangeName,
		"fallback":        result.Fallback,
		"translated":      result.Translated,
	})
}

// FormatDimensions renders the dimension catalog as JSON.
func (f *JSONFormatter) FormatDimensions(dimensions []core.Dimension) (string, error) {
	return f.marshal(map[string]any{
		"dimensions": dimensions,
		"count":      len(dimensions),
	})
}

func (f *JSONFormatter) marshal(value any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
