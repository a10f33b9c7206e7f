package trends

import (
	"context"
	"fmt"
	"strings"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

// Translator converts topics to Simplified Chinese.
type Translator interface {
	TranslateTopics(ctx context.Context, topics []string, sourceLanguage string) ([]string, error)
}

// Fetcher retrieves trending searches from the provider.
type Fetcher interface {
	DailyTrends(ctx context.Context, geo string) ([]string, error)
	RealtimeTrends(ctx context.Context, geo string) ([]string, error)
}

// Service wraps the provider client with validation, static fallbacks, and
// optional translation.
type Service struct {
	Client     Fetcher
	Translator Translator
	Logger     *logging.Logger
}

// TopicsRequest selects a market, a window, and a topic count.
type TopicsRequest struct {
	Country   string
	TimeRange string
	TopN      int
	Translate bool
}

// Validate checks the request against the market and time range catalogs and
// returns the resolved entries. Callers gating the fetch behind a cooldown
// validate first so a rejected request never consumes the window.
func (r TopicsRequest) Validate() (Country, TimeRange, error) {
	country, ok := Countries[strings.ToUpper(strings.TrimSpace(r.Country))]
	if !ok {
		return Country{}, TimeRange{}, fmt.Errorf("不支持的国家代码: %s", r.Country)
	}
	timeRange, ok := TimeRanges[strings.ToLower(strings.TrimSpace(r.TimeRange))]
	if !ok {
		return Country{}, TimeRange{}, fmt.Errorf("不支持的时间范围: %s", r.TimeRange)
	}
	if r.TopN < 1 || r.TopN > 50 {
		return Country{}, TimeRange{}, fmt.Errorf("top_n必须在1-50之间")
	}
	return country, timeRange, nil
}

// TopicsResult is the outcome of a trending topics fetch. Fallback marks
// results served from the static lists; Message carries the reason.
type TopicsResult struct {
	Topics        []string
	Country       string
	CountryName   string
	TimeRange     string
	TimeRangeName string
	Fallback      bool
	Translated    bool
	Message       string
}

// TrendingTopics fetches trending topics for a market. Provider failures do
// not fail the call; the static fallback list is returned with Fallback set.
func (s *Service) TrendingTopics(ctx context.Context, req TopicsRequest) (*TopicsResult, error) {
	if s == nil {
		return nil, fmt.Errorf("trends service not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	country, timeRange, err := req.Validate()
	if err != nil {
		return nil, err
	}

	result := &TopicsResult{
		Country:       country.Code,
		CountryName:   country.Name,
		TimeRange:     timeRange.Key,
		TimeRangeName: timeRange.Name,
	}

	topics, err := s.fetchTrending(ctx, country)
	switch {
	case err != nil:
		s.logWarn("trends provider failed, serving fallback topics",
			zap.String("country", country.Code), zap.Error(err))
		result.Topics = FallbackTopics(country.Code, req.TopN)
		result.Fallback = true
		result.Message = fmt.Sprintf("API调用失败，使用备用数据: %v", err)
	case len(topics) == 0:
		s.logWarn("trends provider returned no topics, serving fallback topics",
			zap.String("country", country.Code))
		result.Topics = FallbackTopics(country.Code, req.TopN)
		result.Fallback = true
		result.Message = fmt.Sprintf("无法获取%s的实时数据，使用备用数据", country.Name)
	default:
		if len(topics) > req.TopN {
			topics = topics[:req.TopN]
		}
		result.Topics = topics
		result.Message = fmt.Sprintf("成功获取%s热门话题", country.Name)
	}

	if req.Translate {
		result.Topics = s.translateTopics(ctx, result.Topics, country.LocalLanguage)
		result.Translated = true
	}

	return result, nil
}

// fetchTrending walks the provider retry ladder: the daily endpoint with each
// known country-code format, then the realtime endpoint.
func (s *Service) fetchTrending(ctx context.Context, country Country) ([]string, error) {
	if s.Client == nil {
		return nil, fmt.Errorf("trends client not configured")
	}

	formats := []string{
		country.TrendingCode,
		strings.ToUpper(country.TrendingCode),
		country.Code,
	}

	var lastErr error
	for _, format := range formats {
		topics, err := s.Client.DailyTrends(ctx, format)
		if err != nil {
			lastErr = err
			continue
		}
		if len(topics) > 0 {
			return topics, nil
		}
	}

	topics, err := s.Client.RealtimeTrends(ctx, country.Code)
	if err != nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, err
	}
	return topics, nil
}

// translateTopics translates the non-Chinese entries in place, preserving
// entries that are already Chinese. Translation failures leave the originals.
func (s *Service) translateTopics(ctx context.Context, topics []string, sourceLanguage string) []string {
	if s.Translator == nil || len(topics) == 0 {
		return topics
	}

	var pending []string
	for _, topic := range topics {
		if !containsChinese(topic) {
			pending = append(pending, topic)
		}
	}
	if len(pending) == 0 {
		return topics
	}

	translated, err := s.Translator.TranslateTopics(ctx, pending, sourceLanguage)
	if err != nil {
		s.logWarn("topic translation failed, keeping originals", zap.Error(err))
		return topics
	}

	result := make([]string, 0, len(topics))
	idx := 0
	for _, topic := range topics {
		if containsChinese(topic) {
			result = append(result, topic)
			continue
		}
		if idx < len(translated) && strings.TrimSpace(translated[idx]) != "" {
			result = append(result, translated[idx])
		} else {
			result = append(result, topic)
		}
		idx++
	}
	return result
}

// TestConnection probes the provider with a known-good market.
func (s *Service) TestConnection(ctx context.Context) (bool, string) {
	if s == nil || s.Client == nil {
		return false, "trends客户端未初始化"
	}
	if ctx == nil {
		ctx = context.Background()
	}

	topics, err := s.Client.DailyTrends(ctx, "US")
	if err != nil {
		return false, fmt.Sprintf("连接测试失败: %v", err)
	}
	if len(topics) == 0 {
		return false, "无法获取测试数据"
	}
	return true, "连接正常"
}

func containsChinese(s string) bool {
	for _, r := range s {
		if r >= 0x4e00 && r <= 0x9fff {
			return true
		}
	}
	return false
}

func (s *Service) logWarn(msg string, fields ...zap.Field) {
	if s == nil || s.Logger == nil {
		return
	}
	s.Logger.Warn(msg, fields...)
}
