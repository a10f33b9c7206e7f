package ailink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adforge/adforge/internal/ailink/prompt"
)

func TestResolveModelUsesOverrideFirst(t *testing.T) {
	providerCfg := ProviderInstanceConfig{Models: map[string]string{"default": "m-default"}}
	promptDef := &prompt.Prompt{Config: prompt.Config{ProviderHints: map[string]any{"preferred_models": []string{"prompt-model"}}}}

	model, err := resolveModel(providerCfg, promptDef, "override-model")
	require.NoError(t, err)
	require.Equal(t, "override-model", model)
}

func TestResolveModelPrefersPromptPreferredModels(t *testing.T) {
	providerCfg := ProviderInstanceConfig{Models: map[string]string{"default": "m-default"}}
	promptDef := &prompt.Prompt{Config: prompt.Config{ProviderHints: map[string]any{"preferred_models": []string{"prompt-model"}}}}

	model, err := resolveModel(providerCfg, promptDef, "")
	require.NoError(t, err)
	require.Equal(t, "prompt-model", model)
}

func TestResolveModelFallsBackToProviderDefault(t *testing.T) {
	providerCfg := ProviderInstanceConfig{Models: map[string]string{"default": "m-default"}}

	model, err := resolveModel(providerCfg, nil, "")
	require.NoError(t, err)
	require.Equal(t, "m-default", model)
}

func TestResolveModelErrorsWhenUnconfigured(t *testing.T) {
	_, err := resolveModel(ProviderInstanceConfig{}, nil, "")
	require.Error(t, err)
}

func TestResolveProviderUsesRoleRouting(t *testing.T) {
	r := NewRegistry(Config{
		Providers: map[string]ProviderInstanceConfig{
			"creative-openai": {Enabled: true, AIProvider: "openai"},
			"backup-xai":      {Enabled: true, AIProvider: "xai"},
		},
		Routing: map[string]string{"creative": "creative-openai"},
	})

	id, cfg, err := r.resolveProvider("creative")
	require.NoError(t, err)
	require.Equal(t, "creative-openai", id)
	require.Equal(t, "openai", cfg.AIProvider)
}

func TestResolveProviderFallsBackToDefault(t *testing.T) {
	r := NewRegistry(Config{
		DefaultProvider: "creative-openai",
		Providers: map[string]ProviderInstanceConfig{
			"creative-openai": {Enabled: true, AIProvider: "openai"},
		},
	})

	id, _, err := r.resolveProvider("unrouted-role")
	require.NoError(t, err)
	require.Equal(t, "creative-openai", id)
}

func TestResolveProviderRejectsDisabledDefault(t *testing.T) {
	r := NewRegistry(Config{
		DefaultProvider: "creative-openai",
		Providers: map[string]ProviderInstanceConfig{
			"creative-openai": {Enabled: false, AIProvider: "openai"},
		},
	})

	_, _, err := r.resolveProvider("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "disabled")
}
