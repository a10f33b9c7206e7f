package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adforge/adforge/internal/core"
	"github.com/adforge/adforge/internal/core/engine"
	"github.com/adforge/adforge/internal/core/store"
	apperrors "github.com/adforge/adforge/internal/errors"
	"github.com/adforge/adforge/internal/metrics"
	"github.com/adforge/adforge/internal/trends"
)

// DimensionStore is the dimension persistence surface the API needs.
type DimensionStore interface {
	ListDimensions(ctx context.Context) ([]core.Dimension, error)
	UpdateDimension(ctx context.Context, id int64, update store.DimensionUpdate, now time.Time) (bool, error)
	AddDimensionOption(ctx context.Context, dimensionID int64, opt core.DimensionOption, now time.Time) (*core.DimensionOption, error)
}

// CreativeStore is the creative persistence surface the API needs.
type CreativeStore interface {
	SaveCreatives(ctx context.Context, creatives []core.Creative, now time.Time) ([]core.Creative, error)
	ListSelectedCreatives(ctx context.Context) ([]core.Creative, error)
}

// CreativeGenerator produces ad creatives for a generation request.
type CreativeGenerator interface {
	Generate(ctx context.Context, params engine.GenerateParams) ([]core.Creative, error)
}

// TrendsProvider fetches trending topics.
type TrendsProvider interface {
	TrendingTopics(ctx context.Context, req trends.TopicsRequest) (*trends.TopicsResult, error)
	TestConnection(ctx context.Context) (bool, string)
}

// API bundles the domain services behind the /api routes.
type API struct {
	Dimensions DimensionStore
	Creatives  CreativeStore
	Generator  CreativeGenerator
	Trends     TrendsProvider

	// Throttle gates the trends endpoint. Every completed provider call,
	// success or failure, begins a new cooldown window.
	Throttle         *engine.Throttle
	CooldownInterval time.Duration

	Clock func() time.Time
}

func (a *API) now() time.Time {
	if a != nil && a.Clock != nil {
		return a.Clock()
	}
	return time.Now().UTC()
}

func (a *API) cooldownInterval() time.Duration {
	if a != nil && a.CooldownInterval > 0 {
		return a.CooldownInterval
	}
	return engine.DefaultCooldownInterval
}

// writeJSON writes an API response with the success/message envelope.
func writeJSON(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

// ceilSeconds converts a remaining duration to whole seconds for display.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

type generateCreativesRequest struct {
	GameBackground     string             `json:"game_background"`
	UserIdea           string             `json:"user_idea"`
	CustomInputs       map[string]string  `json:"custom_inputs"`
	SelectedDimensions map[string][]int64 `json:"selected_dimensions"`
	Count              int                `json:"count"`
	AIModel            string             `json:"ai_model"`
	TimeoutSec         int                `json:"timeout"`
}

// GenerateCreatives handles POST /api/generate-creatives.
func (a *API) GenerateCreatives(w http.ResponseWriter, r *http.Request) {
	var req generateCreativesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "请求格式错误")
		return
	}
	if strings.TrimSpace(req.GameBackground) == "" {
		writeFail(w, http.StatusBadRequest, "游戏背景不能为空")
		return
	}

	started := a.now()
	creatives, err := a.Generator.Generate(r.Context(), engine.GenerateParams{
		GameBackground:     req.GameBackground,
		UserIdea:           req.UserIdea,
		CustomInputs:       req.CustomInputs,
		SelectedDimensions: req.SelectedDimensions,
		Count:              req.Count,
		Model:              req.AIModel,
		TimeoutSec:         req.TimeoutSec,
	})
	if err != nil {
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "creative generation failed"))
		return
	}

	source := "ai"
	if len(creatives) > 0 && creatives[0].FallbackGenerated {
		source = "fallback"
	}
	metrics.RecordGeneration(engine.NormalizeModel(req.AIModel), source, time.Since(started))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   fmt.Sprintf("成功生成%d个创意", len(creatives)),
		"creatives": creatives,
		"count":     len(creatives),
	})
}

type saveCreativesRequest struct {
	Creatives []core.Creative `json:"creatives"`
}

// SaveCreatives handles POST /api/save-creatives.
func (a *API) SaveCreatives(w http.ResponseWriter, r *http.Request) {
	var req saveCreativesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "请求格式错误")
		return
	}
	if len(req.Creatives) == 0 {
		writeFail(w, http.StatusBadRequest, "没有要保存的创意")
		return
	}

	saved, err := a.Creatives.SaveCreatives(r.Context(), req.Creatives, a.now())
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to save creatives"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     fmt.Sprintf("成功保存%d个创意", len(saved)),
		"saved_count": len(saved),
		"creatives":   saved,
	})
}

// SelectedCreatives handles GET /api/creatives/selected.
func (a *API) SelectedCreatives(w http.ResponseWriter, r *http.Request) {
	creatives, err := a.Creatives.ListSelectedCreatives(r.Context())
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to list selected creatives"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"creatives": creatives,
		"count":     len(creatives),
	})
}

// ListDimensions handles GET /api/dimensions.
func (a *API) ListDimensions(w http.ResponseWriter, r *http.Request) {
	dimensions, err := a.Dimensions.ListDimensions(r.Context())
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to list dimensions"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"dimensions": dimensions,
	})
}

type dimensionUpdateRequest struct {
	DisplayName *string `json:"display_name"`
	Description *string `json:"description"`
	Active      *bool   `json:"is_active"`
	SortOrder   *int    `json:"sort_order"`
}

// UpdateDimension handles PUT /api/dimensions/{id}.
func (a *API) UpdateDimension(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "无效的维度ID")
		return
	}

	var req dimensionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "请求格式错误")
		return
	}

	matched, err := a.Dimensions.UpdateDimension(r.Context(), id, store.DimensionUpdate{
		DisplayName: req.DisplayName,
		Description: req.Description,
		Active:      req.Active,
		SortOrder:   req.SortOrder,
	}, a.now())
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to update dimension"))
		return
	}
	if !matched {
		writeFail(w, http.StatusNotFound, "维度不存在")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "维度更新成功",
	})
}

type addOptionRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	VisualHints []string `json:"visual_hints"`
	Templates   []string `json:"templates"`
	SortOrder   int      `json:"sort_order"`
}

// AddDimensionOption handles POST /api/dimensions/{id}/options.
func (a *API) AddDimensionOption(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "无效的维度ID")
		return
	}

	var req addOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "请求格式错误")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeFail(w, http.StatusBadRequest, "选项名称不能为空")
		return
	}

	opt, err := a.Dimensions.AddDimensionOption(r.Context(), id, core.DimensionOption{
		Name:        req.Name,
		Description: req.Description,
		Keywords:    req.Keywords,
		VisualHints: req.VisualHints,
		Templates:   req.Templates,
		Active:      true,
		SortOrder:   req.SortOrder,
	}, a.now())
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to add dimension option"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "选项添加成功",
		"option":  opt,
	})
}

type trendingTopicsRequest struct {
	CountryCode string `json:"country_code"`
	TimeRange   string `json:"time_range"`
	TopN        int    `json:"top_n"`
	Translate   *bool  `json:"translate"`
}

// TrendingTopics handles POST /api/trending-topics.
//
// The endpoint is throttle gated: while a cooldown window is open the request
// is rejected with 429 and the remaining seconds. After the provider call is
// made, a new cooldown begins regardless of the outcome.
func (a *API) TrendingTopics(w http.ResponseWriter, r *http.Request) {
	var req trendingTopicsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "请求格式错误")
		return
	}

	translate := true
	if req.Translate != nil {
		translate = *req.Translate
	}
	if req.TopN == 0 {
		req.TopN = 10
	}

	topicsReq := trends.TopicsRequest{
		Country:   req.CountryCode,
		TimeRange: req.TimeRange,
		TopN:      req.TopN,
		Translate: translate,
	}
	// Validation happens before the gate so a rejected request never
	// consumes the window.
	if _, _, err := topicsReq.Validate(); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	// Check-and-begin is atomic: two concurrent requests cannot both be
	// granted before either window opens.
	decision := a.Throttle.TryBegin(r.Context(), a.cooldownInterval())
	if !decision.Granted {
		secs := ceilSeconds(decision.Remaining)
		metrics.RecordThrottleDenied(r.URL.Path)
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"success":           false,
			"message":           fmt.Sprintf("请求过于频繁，请%d秒后重试", secs),
			"remaining_seconds": secs,
		})
		return
	}

	result, err := a.Trends.TrendingTopics(r.Context(), topicsReq)
	if err != nil {
		// The gated call was made; the window opened by TryBegin stands.
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Restart the window from completion so the full interval follows the
	// provider call.
	a.Throttle.BeginCooldown(r.Context(), a.cooldownInterval())
	metrics.RecordCooldownBegun()

	source := "live"
	if result.Fallback {
		source = "fallback"
	}
	metrics.RecordTrendsFetch(result.Country, source)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"message":          result.Message,
		"topics":           result.Topics,
		"country":          result.Country,
		"country_name":     result.CountryName,
		"time_range":       result.TimeRange,
		"time_range_name":  result.TimeRangeName,
		"fallback":         result.Fallback,
		"translated":       result.Translated,
		"cooldown_seconds": int(a.cooldownInterval().Seconds()),
	})
}

// TrendingCountries handles GET /api/trending-topics/countries.
func (a *API) TrendingCountries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"countries": trends.CountryList(),
	})
}

// TrendingTimeRanges handles GET /api/trending-topics/time-ranges.
func (a *API) TrendingTimeRanges(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"time_ranges": trends.TimeRangeList(),
	})
}

// TrendingTest handles GET /api/trending-topics/test.
func (a *API) TrendingTest(w http.ResponseWriter, r *http.Request) {
	ok, message := a.Trends.TestConnection(r.Context())
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"success": ok,
		"message": message,
	})
}

// CooldownStatus handles GET /api/trending-topics/cooldown.
//
// Clients poll this once per second while cooling down; remaining time is
// recomputed from the absolute deadline on every call.
func (a *API) CooldownStatus(w http.ResponseWriter, _ *http.Request) {
	if a.Throttle == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"ready":   true,
		})
		return
	}

	state, remaining := a.Throttle.State()
	if state == engine.ThrottleCoolingDown {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":           true,
			"ready":             false,
			"cooling_down":      true,
			"remaining_seconds": ceilSeconds(remaining),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"ready":   true,
	})
}
