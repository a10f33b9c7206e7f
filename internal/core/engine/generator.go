package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adforge/adforge/internal/ailink"
	"github.com/adforge/adforge/internal/core"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

// Supported creative generation models.
const (
	ModelNano = "gpt-5-nano"
	ModelMini = "gpt-5-mini"
)

const creativePromptSlug = "creative-generation"

// NormalizeModel maps unknown model names to the default (cheapest) model.
func NormalizeModel(model string) string {
	switch strings.TrimSpace(model) {
	case ModelNano, ModelMini:
		return strings.TrimSpace(model)
	default:
		return ModelNano
	}
}

// NormalizeCount clamps the requested creative count to the set the model
// supports. Out-of-range requests snap to the model default rather than error.
func NormalizeCount(model string, count int) int {
	switch NormalizeModel(model) {
	case ModelMini:
		if count >= 1 && count <= 3 {
			return count
		}
		return 2
	default:
		switch count {
		case 1, 3, 5, 10:
			return count
		}
		return 5
	}
}

// CreativeCompleter runs structured generation prompts.
type CreativeCompleter interface {
	Generate(ctx context.Context, req ailink.GenerateRequest) (*ailink.GenerateResponse, error)
}

// OptionSource loads dimension options referenced by a generation request.
type OptionSource interface {
	GetOptionsByID(ctx context.Context, ids []int64) ([]core.DimensionOption, error)
}

// Generator produces ad creatives from a game background plus optional user
// idea and dimension selections. AI failures never fail the request; the
// generator falls back to template creatives instead.
type Generator struct {
	AI      CreativeCompleter
	Options OptionSource
	Logger  *logging.Logger
	Clock   func() time.Time
}

// GenerateParams carries one generation request.
type GenerateParams struct {
	GameBackground     string
	UserIdea           string
	CustomInputs       map[string]string
	SelectedDimensions map[string][]int64
	Count              int
	Model              string
	TimeoutSec         int
}

func (g *Generator) now() time.Time {
	if g != nil && g.Clock != nil {
		return g.Clock()
	}
	return time.Now()
}

// Generate runs the creative generation pipeline.
func (g *Generator) Generate(ctx context.Context, params GenerateParams) ([]core.Creative, error) {
	if g == nil {
		return nil, fmt.Errorf("generator not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	background := strings.TrimSpace(params.GameBackground)
	if background == "" {
		return nil, fmt.Errorf("game background is required")
	}

	model := NormalizeModel(params.Model)
	count := NormalizeCount(model, params.Count)

	genParams := core.GenerationParams{
		GameBackground:     background,
		UserIdea:           strings.TrimSpace(params.UserIdea),
		CustomInputs:       params.CustomInputs,
		SelectedDimensions: params.SelectedDimensions,
		Count:              count,
		Model:              model,
		Timestamp:          g.now().UTC(),
	}

	options, err := g.loadSelectedOptions(ctx, params.SelectedDimensions)
	if err != nil {
		g.logWarn("failed to load dimension options", zap.Error(err))
		options = nil
	}

	if g.AI == nil {
		return g.templateCreatives(count, genParams, options), nil
	}

	variables, err := buildPromptVariables(background, count, genParams, options)
	if err != nil {
		return nil, err
	}

	resp, err := g.AI.Generate(ctx, ailink.GenerateRequest{
		Role:       "creative",
		PromptSlug: creativePromptSlug,
		Variables:  variables,
		Model:      model,
		TimeoutSec: params.TimeoutSec,
	})
	if err != nil {
		g.logWarn("ai generation failed, falling back to templates",
			zap.String("model", model), zap.Error(err))
		if raw := rawFromError(err); raw != "" {
			if creatives := splitTextCreatives(raw, count, genParams); len(creatives) > 0 {
				return creatives, nil
			}
		}
		return g.templateCreatives(count, genParams, options), nil
	}

	creatives, err := parseCreatives(resp.Raw, genParams)
	if err != nil {
		g.logWarn("failed to parse ai response", zap.Error(err))
		if creatives := splitTextCreatives(string(resp.Raw), count, genParams); len(creatives) > 0 {
			return creatives, nil
		}
		return g.templateCreatives(count, genParams, options), nil
	}

	return creatives, nil
}

func (g *Generator) loadSelectedOptions(ctx context.Context, selected map[string][]int64) (map[string][]core.DimensionOption, error) {
	if g.Options == nil || len(selected) == 0 {
		return nil, nil
	}

	result := make(map[string][]core.DimensionOption, len(selected))
	for dimension, ids := range selected {
		if len(ids) == 0 {
			continue
		}
		options, err := g.Options.GetOptionsByID(ctx, ids)
		if err != nil {
			return nil, err
		}
		if len(options) > 0 {
			result[dimension] = options
		}
	}
	return result, nil
}

type promptOption struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	VisualHints []string `json:"visual_hints,omitempty"`
}

func buildPromptVariables(background string, count int, params core.GenerationParams, options map[string][]core.DimensionOption) (map[string]string, error) {
	variables := map[string]string{
		"game_background": background,
		"count":           fmt.Sprintf("%d", count),
	}
	if params.UserIdea != "" {
		variables["user_idea"] = params.UserIdea
	}

	if len(params.CustomInputs) > 0 {
		keys := make([]string, 0, len(params.CustomInputs))
		for key := range params.CustomInputs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, key := range keys {
			lines = append(lines, key+": "+params.CustomInputs[key])
		}
		variables["custom_inputs"] = strings.Join(lines, "\n")
	}

	if len(options) > 0 {
		payload := make(map[string][]promptOption, len(options))
		for dimension, opts := range options {
			converted := make([]promptOption, 0, len(opts))
			for _, opt := range opts {
				converted = append(converted, promptOption{
					Name:        opt.Name,
					Description: opt.Description,
					Keywords:    opt.Keywords,
					VisualHints: opt.VisualHints,
				})
			}
			payload[dimension] = converted
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode dimensions: %w", err)
		}
		variables["dimensions"] = string(encoded)
	}

	return variables, nil
}

type creativePayload struct {
	Creatives []creativeItem `json:"creatives"`
}

type creativeItem struct {
	Index            int      `json:"index"`
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	CoreConcept      string   `json:"core_concept"`
	SceneDescription string   `json:"scene_description"`
	CameraLighting   string   `json:"camera_lighting"`
	ColorProps       string   `json:"color_props"`
	KeyNotes         string   `json:"key_notes"`
	ChosenDimensions []string `json:"chosen_dimensions"`
	Keywords         []string `json:"keywords"`
	VisualHints      []string `json:"visual_hints"`
}

func parseCreatives(raw json.RawMessage, params core.GenerationParams) ([]core.Creative, error) {
	var payload creativePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode creatives: %w", err)
	}
	if len(payload.Creatives) == 0 {
		return nil, fmt.Errorf("response contained no creatives")
	}

	creatives := make([]core.Creative, 0, len(payload.Creatives))
	for i, item := range payload.Creatives {
		title := item.Title
		content := item.Content
		if strings.TrimSpace(item.CoreConcept) != "" {
			title = item.CoreConcept
			content = item.SceneDescription
		}
		if strings.TrimSpace(title) == "" {
			title = fmt.Sprintf("创意 #%d", i+1)
		}

		creatives = append(creatives, core.Creative{
			Index:              i + 1,
			Title:              title,
			Content:            content,
			CoreConcept:        item.CoreConcept,
			SceneDescription:   item.SceneDescription,
			CameraLighting:     item.CameraLighting,
			ColorProps:         item.ColorProps,
			KeyNotes:           item.KeyNotes,
			ChosenDimensions:   item.ChosenDimensions,
			Keywords:           item.Keywords,
			VisualHints:        item.VisualHints,
			SelectedDimensions: params.SelectedDimensions,
			AIGenerated:        true,
			GenerationParams:   params,
		})
	}
	return creatives, nil
}

// splitTextCreatives salvages a non-JSON model reply by treating blank-line
// separated paragraphs as individual creatives.
func splitTextCreatives(raw string, count int, params core.GenerationParams) []core.Creative {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "{") {
		return nil
	}

	parts := strings.Split(raw, "\n\n")
	creatives := make([]core.Creative, 0, count)
	for _, part := range parts {
		if len(creatives) == count {
			break
		}
		content := strings.TrimSpace(part)
		if content == "" {
			continue
		}
		creatives = append(creatives, core.Creative{
			Index:              len(creatives) + 1,
			Title:              truncateRunes(content, 30),
			Content:            content,
			SelectedDimensions: params.SelectedDimensions,
			AIGenerated:        true,
			FallbackGenerated:  true,
			GenerationParams:   params,
		})
	}
	return creatives
}

// templateCreatives builds creatives without the model, combining the user
// idea with the selected option vocabulary.
func (g *Generator) templateCreatives(count int, params core.GenerationParams, options map[string][]core.DimensionOption) []core.Creative {
	flat := flattenOptions(options)

	creatives := make([]core.Creative, 0, count)
	for i := 0; i < count; i++ {
		var chosen []core.DimensionOption
		if len(flat) > 0 {
			// Rotate through the selected options so consecutive creatives differ.
			chosen = append(chosen, flat[i%len(flat)])
			if len(flat) > 1 {
				chosen = append(chosen, flat[(i+1)%len(flat)])
			}
		}

		content := templateContent(params, chosen)
		creatives = append(creatives, core.Creative{
			Index:              i + 1,
			Title:              truncateRunes(content, 20),
			Content:            content,
			CoreConcept:        fmt.Sprintf("%s的核心概念 #%d", params.GameBackground, i+1),
			SceneDescription:   content,
			CameraLighting:     "标准镜头和光线设置",
			ColorProps:         "符合主题的色彩和道具配置",
			KeyNotes:           "画面中严禁出现任何文字、Logo、字幕与标识",
			ChosenDimensions:   optionNames(chosen),
			Keywords:           collectKeywords(chosen),
			VisualHints:        collectVisualHints(chosen),
			SelectedDimensions: params.SelectedDimensions,
			FallbackGenerated:  true,
			GenerationParams:   params,
		})
	}
	return creatives
}

func templateContent(params core.GenerationParams, chosen []core.DimensionOption) string {
	names := optionNames(chosen)

	if params.UserIdea != "" {
		if len(names) > 0 {
			return fmt.Sprintf("%s，融合%s风格，带来独特体验！", params.UserIdea, strings.Join(names, "/"))
		}
		return params.UserIdea + "，精心设计的创意方案！"
	}

	if len(params.CustomInputs) > 0 {
		keys := make([]string, 0, len(params.CustomInputs))
		for key := range params.CustomInputs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		values := make([]string, 0, len(keys))
		for _, key := range keys {
			if v := strings.TrimSpace(params.CustomInputs[key]); v != "" {
				values = append(values, v)
			}
		}
		if custom := strings.Join(values, " "); custom != "" {
			if len(names) > 0 {
				return fmt.Sprintf("%s，结合%s的创意元素！", custom, strings.Join(names, "/"))
			}
			return custom + "，个性化创意表达！"
		}
	}

	if len(names) > 0 {
		return fmt.Sprintf("融合%s，带来全新体验！", strings.Join(names, "/"))
	}
	return fmt.Sprintf("基于%s的广告创意描述", params.GameBackground)
}

func flattenOptions(options map[string][]core.DimensionOption) []core.DimensionOption {
	if len(options) == 0 {
		return nil
	}
	dimensions := make([]string, 0, len(options))
	for dimension := range options {
		dimensions = append(dimensions, dimension)
	}
	sort.Strings(dimensions)

	var flat []core.DimensionOption
	for _, dimension := range dimensions {
		flat = append(flat, options[dimension]...)
	}
	return flat
}

func optionNames(options []core.DimensionOption) []string {
	if len(options) == 0 {
		return nil
	}
	names := make([]string, 0, len(options))
	for _, opt := range options {
		names = append(names, opt.Name)
	}
	return names
}

func collectKeywords(options []core.DimensionOption) []string {
	return dedupeStrings(options, func(opt core.DimensionOption) []string { return opt.Keywords })
}

func collectVisualHints(options []core.DimensionOption) []string {
	return dedupeStrings(options, func(opt core.DimensionOption) []string { return opt.VisualHints })
}

func dedupeStrings(options []core.DimensionOption, extract func(core.DimensionOption) []string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, opt := range options {
		for _, value := range extract(opt) {
			if _, ok := seen[value]; ok {
				continue
			}
			seen[value] = struct{}{}
			result = append(result, value)
		}
	}
	return result
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

func rawFromError(err error) string {
	var rawErr *ailink.RawResponseError
	if errors.As(err, &rawErr) && rawErr != nil {
		return string(rawErr.Raw)
	}
	return ""
}

func (g *Generator) logWarn(msg string, fields ...zap.Field) {
	if g == nil || g.Logger == nil {
		return
	}
	g.Logger.Warn(msg, fields...)
}
