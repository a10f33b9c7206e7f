//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adforge/adforge/internal/core"
)

func TestSeedBuiltInDimensions(t *testing.T) {
	ctx := context.Background()
	store := openMigratedStore(t)

	now := time.Now().UTC()
	require.NoError(t, store.SeedBuiltInDimensions(ctx, now))

	dimensions, err := store.ListDimensions(ctx)
	require.NoError(t, err)
	require.Len(t, dimensions, len(core.BuiltInDimensions))

	for i, dim := range dimensions {
		require.Equal(t, core.BuiltInDimensions[i].Name, dim.Name)
		require.Len(t, dim.Options, len(core.BuiltInDimensions[i].Options))
	}

	// Seeding again must not duplicate rows.
	require.NoError(t, store.SeedBuiltInDimensions(ctx, now))
	dimensions, err = store.ListDimensions(ctx)
	require.NoError(t, err)
	require.Len(t, dimensions, len(core.BuiltInDimensions))
}

func TestUpdateDimension(t *testing.T) {
	ctx := context.Background()
	store := openMigratedStore(t)
	require.NoError(t, store.SeedBuiltInDimensions(ctx, time.Now().UTC()))

	dimensions, err := store.ListDimensions(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, dimensions)
	target := dimensions[0]

	displayName := "情绪与动机"
	active := false
	matched, err := store.UpdateDimension(ctx, target.ID, DimensionUpdate{
		DisplayName: &displayName,
		Active:      &active,
	}, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, matched)

	updated, err := store.GetDimension(ctx, target.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, displayName, updated.DisplayName)
	require.False(t, updated.Active)

	// Deactivated dimensions drop out of the list view.
	dimensions, err = store.ListDimensions(ctx)
	require.NoError(t, err)
	require.Len(t, dimensions, len(core.BuiltInDimensions)-1)

	matched, err = store.UpdateDimension(ctx, 99999, DimensionUpdate{DisplayName: &displayName}, time.Now().UTC())
	require.NoError(t, err)
	require.False(t, matched)
}

func TestAddDimensionOption(t *testing.T) {
	ctx := context.Background()
	store := openMigratedStore(t)
	require.NoError(t, store.SeedBuiltInDimensions(ctx, time.Now().UTC()))

	dimensions, err := store.ListDimensions(ctx)
	require.NoError(t, err)
	target := dimensions[0]
	existing := len(target.Options)

	created, err := store.AddDimensionOption(ctx, target.ID, core.DimensionOption{
		Name:        "怀旧复刻",
		Description: "像素风+老机型边框",
		Keywords:    []string{"怀旧", "经典"},
	}, time.Now().UTC())
	require.NoError(t, err)
	require.NotNil(t, created)
	require.Equal(t, existing, created.SortOrder)
	require.Equal(t, target.ID, created.DimensionID)
	require.NotZero(t, created.ID)

	options, err := store.GetOptionsByID(ctx, []int64{created.ID})
	require.NoError(t, err)
	require.Len(t, options, 1)
	require.Equal(t, "怀旧复刻", options[0].Name)
	require.Equal(t, []string{"怀旧", "经典"}, options[0].Keywords)
	require.Equal(t, []string{}, options[0].Templates)

	_, err = store.AddDimensionOption(ctx, target.ID, core.DimensionOption{Name: "  "}, time.Now().UTC())
	require.Error(t, err)

	_, err = store.AddDimensionOption(ctx, 99999, core.DimensionOption{Name: "ok"}, time.Now().UTC())
	require.Error(t, err)
}

func TestSaveAndListCreatives(t *testing.T) {
	ctx := context.Background()
	store := openMigratedStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	saved, err := store.SaveCreatives(ctx, []core.Creative{
		{
			Title:            "胜利瞬间创意",
			Content:          "低角度定格凯旋画面",
			CoreConcept:      "胜利荣耀",
			SceneDescription: "英雄在金色光效中举起王冠",
			KeyNotes:         "画面中严禁出现任何文字、Logo、字幕与标识",
			Keywords:         []string{"胜利", "王冠"},
			AIGenerated:      true,
			SelectedDimensions: map[string][]int64{
				"emotion_motivation": {1, 2},
			},
			GenerationParams: core.GenerationParams{Count: 5, Model: "gpt-5-nano"},
		},
	}, now)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.NotZero(t, saved[0].ID)
	require.True(t, saved[0].Selected)
	require.Equal(t, core.CreativeStatusSelected, saved[0].Status)

	listed, err := store.ListSelectedCreatives(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "胜利瞬间创意", listed[0].Title)
	require.Equal(t, []string{"胜利", "王冠"}, listed[0].Keywords)
	require.Equal(t, []int64{1, 2}, listed[0].SelectedDimensions["emotion_motivation"])
	require.Equal(t, "gpt-5-nano", listed[0].GenerationParams.Model)
	require.True(t, listed[0].AIGenerated)

	_, err = store.SaveCreatives(ctx, nil, now)
	require.Error(t, err)
}
