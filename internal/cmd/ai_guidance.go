package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/adforge/adforge/internal/ailink"
)

// aiGuidanceShown tracks if the AI configuration warning has been shown
// this session to avoid repeating it.
var aiGuidanceShown bool

// isAIBackendConfigured checks if any AI provider has a valid API key configured.
func isAIBackendConfigured(cfg ailink.Config) bool {
	for _, provider := range cfg.Providers {
		if !provider.Enabled {
			continue
		}
		for _, cred := range provider.Credentials {
			if cred.Enabled && strings.TrimSpace(cred.APIKey) != "" {
				return true
			}
		}
	}
	return false
}

// showAIGuidanceWarning prints a warning about template fallback mode when no
// AI backend is configured. Shows once per session.
// Writes to stderr to avoid interfering with JSON/structured output.
func showAIGuidanceWarning(cfg ailink.Config, w io.Writer) {
	if aiGuidanceShown {
		return
	}
	if isAIBackendConfigured(cfg) {
		return
	}

	if w == nil {
		w = os.Stderr
	}

	// Informational output to stderr - errors are best-effort
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Note: Running in template fallback mode (no AI backend configured).")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "  Creatives are assembled from dimension option templates instead of the")
	_, _ = fmt.Fprintln(w, "  AI model, so titles and scene descriptions will be far more generic.")
	_, _ = fmt.Fprintln(w, "  Trending topic translation is also unavailable.")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "  To enable AI generation, configure an AI backend:")
	_, _ = fmt.Fprintln(w, "    adforge doctor init --api-key prompt")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "  Or set ADFORGE_AILINK_PROVIDERS_ADFORGE_OPENAI_CREDENTIALS_0_API_KEY.")
	_, _ = fmt.Fprintln(w, "")

	aiGuidanceShown = true
}

// resetAIGuidance resets the shown flag (for testing).
func resetAIGuidance() {
	aiGuidanceShown = false
}
