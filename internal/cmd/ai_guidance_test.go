package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/adforge/adforge/internal/ailink"
)

func TestIsAIBackendConfigured(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ailink.Config
		expected bool
	}{
		{
			name:     "empty config",
			cfg:      ailink.Config{},
			expected: false,
		},
		{
			name: "provider with empty credentials",
			cfg: ailink.Config{
				Providers: map[string]ailink.ProviderInstanceConfig{
					"test": {Enabled: true, Credentials: []ailink.CredentialConfig{}},
				},
			},
			expected: false,
		},
		{
			name: "provider with disabled credential",
			cfg: ailink.Config{
				Providers: map[string]ailink.ProviderInstanceConfig{
					"test": {
						Enabled: true,
						Credentials: []ailink.CredentialConfig{
							{Enabled: false, APIKey: "sk-test"},
						},
					},
				},
			},
			expected: false,
		},
		{
			name: "provider with empty API key",
			cfg: ailink.Config{
				Providers: map[string]ailink.ProviderInstanceConfig{
					"test": {
						Enabled: true,
						Credentials: []ailink.CredentialConfig{
							{Enabled: true, APIKey: ""},
						},
					},
				},
			},
			expected: false,
		},
		{
			name: "provider with whitespace API key",
			cfg: ailink.Config{
				Providers: map[string]ailink.ProviderInstanceConfig{
					"test": {
						Enabled: true,
						Credentials: []ailink.CredentialConfig{
							{Enabled: true, APIKey: "   "},
						},
					},
				},
			},
			expected: false,
		},
		{
			name: "disabled provider with valid key",
			cfg: ailink.Config{
				Providers: map[string]ailink.ProviderInstanceConfig{
					"test": {
						Enabled: false,
						Credentials: []ailink.CredentialConfig{
							{Enabled: true, APIKey: "sk-valid"},
						},
					},
				},
			},
			expected: false,
		},
		{
			name: "provider with valid credential",
			cfg: ailink.Config{
				Providers: map[string]ailink.ProviderInstanceConfig{
					"test": {
						Enabled: true,
						Credentials: []ailink.CredentialConfig{
							{Enabled: true, APIKey: "sk-valid"},
						},
					},
				},
			},
			expected: true,
		},
		{
			name: "multiple providers one valid",
			cfg: ailink.Config{
				Providers: map[string]ailink.ProviderInstanceConfig{
					"disabled": {Enabled: false, Credentials: []ailink.CredentialConfig{{Enabled: true, APIKey: "sk-1"}}},
					"valid":    {Enabled: true, Credentials: []ailink.CredentialConfig{{Enabled: true, APIKey: "sk-2"}}},
				},
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isAIBackendConfigured(tt.cfg)
			if result != tt.expected {
				t.Errorf("isAIBackendConfigured() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestShowAIGuidanceWarning(t *testing.T) {
	// Reset state before test
	resetAIGuidance()

	t.Run("shows warning when not configured", func(t *testing.T) {
		resetAIGuidance()
		var buf bytes.Buffer
		cfg := ailink.Config{}

		showAIGuidanceWarning(cfg, &buf)

		output := buf.String()
		if !strings.Contains(output, "template fallback mode") {
			t.Error("expected warning message about template fallback mode")
		}
		if !strings.Contains(output, "adforge doctor init") {
			t.Error("expected configuration instructions")
		}
	})

	t.Run("does not show when configured", func(t *testing.T) {
		resetAIGuidance()
		var buf bytes.Buffer
		cfg := ailink.Config{
			Providers: map[string]ailink.ProviderInstanceConfig{
				"test": {
					Enabled:     true,
					Credentials: []ailink.CredentialConfig{{Enabled: true, APIKey: "sk-test"}},
				},
			},
		}

		showAIGuidanceWarning(cfg, &buf)

		if buf.Len() > 0 {
			t.Errorf("expected no output when configured, got: %s", buf.String())
		}
	})

	t.Run("shows only once per session", func(t *testing.T) {
		resetAIGuidance()
		var buf1, buf2 bytes.Buffer
		cfg := ailink.Config{}

		showAIGuidanceWarning(cfg, &buf1)
		showAIGuidanceWarning(cfg, &buf2)

		if buf1.Len() == 0 {
			t.Error("expected warning on first call")
		}
		if buf2.Len() > 0 {
			t.Error("expected no warning on second call")
		}
	})
}
