package trends

import "sort"

// Country describes a supported trends market.
type Country struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	TrendingCode  string `json:"trending_code"`
	LocalLanguage string `json:"-"`
}

// TimeRange describes a supported lookback window with its provider timeframe code.
type TimeRange struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Timeframe string `json:"timeframe"`
}

// Countries is the Southeast Asia market set.
var Countries = map[string]Country{
	"VN": {Code: "VN", Name: "越南", TrendingCode: "vietnam", LocalLanguage: "Tiếng Việt"},
	"TH": {Code: "TH", Name: "泰国", TrendingCode: "thailand", LocalLanguage: "ภาษาไทย"},
	"SG": {Code: "SG", Name: "新加坡", TrendingCode: "singapore", LocalLanguage: "English"},
	"MY": {Code: "MY", Name: "马来西亚", TrendingCode: "malaysia", LocalLanguage: "English"},
	"ID": {Code: "ID", Name: "印尼", TrendingCode: "indonesia", LocalLanguage: "Bahasa Indonesia"},
	"PH": {Code: "PH", Name: "菲律宾", TrendingCode: "philippines", LocalLanguage: "English"},
}

// TimeRanges maps range keys to provider timeframe codes.
var TimeRanges = map[string]TimeRange{
	"today": {Key: "today", Name: "今日", Timeframe: "now 1-d"},
	"week":  {Key: "week", Name: "本周", Timeframe: "now 7-d"},
	"month": {Key: "month", Name: "本月", Timeframe: "today 1-m"},
}

// CountryList returns supported countries sorted by code.
func CountryList() []Country {
	codes := make([]string, 0, len(Countries))
	for code := range Countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	result := make([]Country, 0, len(codes))
	for _, code := range codes {
		result = append(result, Countries[code])
	}
	return result
}

// TimeRangeList returns supported ranges in today/week/month order.
func TimeRangeList() []TimeRange {
	return []TimeRange{TimeRanges["today"], TimeRanges["week"], TimeRanges["month"]}
}
