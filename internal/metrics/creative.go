package metrics

import (
	"time"

	"github.com/adforge/adforge/internal/observability"
)

// Domain metric names
const (
	GenerationsTotal    = "creative_generations_total"
	GenerationDuration  = "creative_generation_duration_ms"
	ThrottleDeniesTotal = "throttle_denies_total"
	CooldownsTotal      = "cooldowns_begun_total"
	TrendsFetchTotal    = "trends_fetch_total"
)

// RecordGeneration records a creative generation run.
// Source is "ai" for model output or "fallback" for template creatives.
func RecordGeneration(model string, source string, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	labels := map[string]string{
		"model":  model,
		"source": source,
	}
	_ = observability.TelemetrySystem.Counter(GenerationsTotal, 1, labels)
	_ = observability.TelemetrySystem.Histogram(GenerationDuration, duration, map[string]string{
		"model": model,
	})
}

// RecordThrottleDenied records a request rejected while cooling down.
func RecordThrottleDenied(endpoint string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ThrottleDeniesTotal,
			1,
			map[string]string{"endpoint": endpoint},
		)
	}
}

// RecordCooldownBegun records a new cooldown window.
func RecordCooldownBegun() {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(CooldownsTotal, 1, nil)
	}
}

// RecordTrendsFetch records a trending topics fetch.
// Source is "live" or "fallback".
func RecordTrendsFetch(country string, source string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			TrendsFetchTotal,
			1,
			map[string]string{
				"country": country,
				"source":  source,
			},
		)
	}
}
