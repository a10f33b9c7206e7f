package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adforge/adforge/internal/ailink"
	"github.com/adforge/adforge/internal/core"
)

type fakeCompleter struct {
	resp *ailink.GenerateResponse
	err  error
	req  ailink.GenerateRequest
}

func (f *fakeCompleter) Generate(ctx context.Context, req ailink.GenerateRequest) (*ailink.GenerateResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeOptionSource struct {
	options []core.DimensionOption
	err     error
}

func (f *fakeOptionSource) GetOptionsByID(ctx context.Context, ids []int64) ([]core.DimensionOption, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.options, nil
}

func TestNormalizeModel(t *testing.T) {
	require.Equal(t, ModelNano, NormalizeModel("gpt-5-nano"))
	require.Equal(t, ModelMini, NormalizeModel("gpt-5-mini"))
	require.Equal(t, ModelNano, NormalizeModel("gpt-4o"))
	require.Equal(t, ModelNano, NormalizeModel(""))
}

func TestNormalizeCount(t *testing.T) {
	cases := []struct {
		name  string
		model string
		count int
		want  int
	}{
		{"nano allows one", ModelNano, 1, 1},
		{"nano allows ten", ModelNano, 10, 10},
		{"nano snaps odd count to default", ModelNano, 7, 5},
		{"nano snaps zero to default", ModelNano, 0, 5},
		{"mini allows three", ModelMini, 3, 3},
		{"mini snaps high count to default", ModelMini, 8, 2},
		{"unknown model uses nano policy", "gpt-4o", 4, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeCount(tc.model, tc.count))
		})
	}
}

func TestGeneratorParsesStructuredResponse(t *testing.T) {
	raw := `{"creatives":[
		{"core_concept":"海滩竞速","scene_description":"夕阳下的沙滩赛道","camera_lighting":"低角度逆光","color_props":"橙紫撞色","key_notes":"无文字","keywords":["速度"],"visual_hints":["逆光剪影"]},
		{"title":"备用标题","content":"备用内容"}
	]}`
	ai := &fakeCompleter{resp: &ailink.GenerateResponse{Raw: json.RawMessage(raw)}}
	gen := &Generator{AI: ai, Clock: func() time.Time { return time.Unix(1000, 0) }}

	creatives, err := gen.Generate(context.Background(), GenerateParams{
		GameBackground: "竞速手游",
		Count:          3,
		Model:          ModelNano,
	})
	require.NoError(t, err)
	require.Len(t, creatives, 2)

	first := creatives[0]
	require.Equal(t, 1, first.Index)
	require.Equal(t, "海滩竞速", first.Title)
	require.Equal(t, "夕阳下的沙滩赛道", first.Content)
	require.Equal(t, "低角度逆光", first.CameraLighting)
	require.True(t, first.AIGenerated)
	require.False(t, first.FallbackGenerated)
	require.NotNil(t, first.GenerationParams)
	require.Equal(t, ModelNano, first.GenerationParams.Model)
	require.Equal(t, 3, first.GenerationParams.Count)

	second := creatives[1]
	require.Equal(t, 2, second.Index)
	require.Equal(t, "备用标题", second.Title)
	require.Equal(t, "备用内容", second.Content)

	require.Equal(t, "creative-generation", ai.req.PromptSlug)
	require.Equal(t, "竞速手游", ai.req.Variables["game_background"])
	require.Equal(t, "3", ai.req.Variables["count"])
}

func TestGeneratorRequiresGameBackground(t *testing.T) {
	gen := &Generator{AI: &fakeCompleter{}}
	_, err := gen.Generate(context.Background(), GenerateParams{Count: 5})
	require.Error(t, err)
	require.Contains(t, err.Error(), "game background")
}

func TestGeneratorFallsBackOnProviderError(t *testing.T) {
	ai := &fakeCompleter{err: context.DeadlineExceeded}
	gen := &Generator{AI: ai}

	creatives, err := gen.Generate(context.Background(), GenerateParams{
		GameBackground: "塔防游戏",
		UserIdea:       "冬季活动",
		Count:          3,
		Model:          ModelNano,
	})
	require.NoError(t, err)
	require.Len(t, creatives, 3)
	for i, creative := range creatives {
		require.Equal(t, i+1, creative.Index)
		require.True(t, creative.FallbackGenerated)
		require.False(t, creative.AIGenerated)
		require.Contains(t, creative.Content, "冬季活动")
		require.Equal(t, "画面中严禁出现任何文字、Logo、字幕与标识", creative.KeyNotes)
	}
}

func TestGeneratorFallbackUsesSelectedOptionVocabulary(t *testing.T) {
	ai := &fakeCompleter{err: context.DeadlineExceeded}
	options := &fakeOptionSource{options: []core.DimensionOption{
		{ID: 1, Name: "成就感", Keywords: []string{"成就", "胜利"}, VisualHints: []string{"金色光效"}},
	}}
	gen := &Generator{AI: ai, Options: options}

	creatives, err := gen.Generate(context.Background(), GenerateParams{
		GameBackground:     "卡牌游戏",
		SelectedDimensions: map[string][]int64{"emotion_motivation": {1}},
		Count:              1,
		Model:              ModelMini,
	})
	require.NoError(t, err)
	require.Len(t, creatives, 1)
	require.Contains(t, creatives[0].ChosenDimensions, "成就感")
	require.Contains(t, creatives[0].Keywords, "成就")
	require.Contains(t, creatives[0].VisualHints, "金色光效")
}

func TestGeneratorSalvagesPlainTextResponse(t *testing.T) {
	ai := &fakeCompleter{err: &ailink.RawResponseError{
		Err: context.Canceled,
		Raw: json.RawMessage("第一个创意描述\n\n第二个创意描述\n\n第三个创意描述"),
	}}
	gen := &Generator{AI: ai}

	creatives, err := gen.Generate(context.Background(), GenerateParams{
		GameBackground: "模拟经营",
		Count:          2,
		Model:          ModelMini,
	})
	require.NoError(t, err)
	require.Len(t, creatives, 2)
	require.Equal(t, "第一个创意描述", creatives[0].Content)
	require.True(t, creatives[0].FallbackGenerated)
	require.True(t, creatives[0].AIGenerated)
}

func TestGeneratorSnapsCountInsideRequest(t *testing.T) {
	raw := `{"creatives":[{"title":"t","content":"c"}]}`
	ai := &fakeCompleter{resp: &ailink.GenerateResponse{Raw: json.RawMessage(raw)}}
	gen := &Generator{AI: ai}

	_, err := gen.Generate(context.Background(), GenerateParams{
		GameBackground: "射击游戏",
		Count:          99,
		Model:          ModelMini,
	})
	require.NoError(t, err)
	require.Equal(t, "2", ai.req.Variables["count"])
	require.Equal(t, ModelMini, ai.req.Model)
}
