package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	"github.com/adforge/adforge/internal/core/store"
	"github.com/adforge/adforge/internal/output"
)

var cooldownCmd = &cobra.Command{
	Use:   "cooldown",
	Short: "Manage persisted cooldown state",
}

var (
	cooldownStatusOutput string
	cooldownStatusOut    string
	cooldownStatusOutDir string
)

var cooldownStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored cooldown state",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(cooldownStatusOutput)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		entries, err := db.ListCooldowns(cmd.Context())
		if err != nil {
			return err
		}

		outPath := strings.TrimSpace(cooldownStatusOut)
		outDir := strings.TrimSpace(cooldownStatusOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}

		ext := outputExtension(format)
		if outDir != "" {
			var err error
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("cooldown.status.%s", ext))
		}

		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		now := time.Now().UTC()
		if format == output.FormatJSON {
			payload, err := json.MarshalIndent(cooldownStatusPayload(entries, now), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(sink.writer, string(payload))
			return err
		}

		lines := []string{"Cooldowns", ""}
		if len(entries) == 0 {
			lines = append(lines, "(no stored cooldown state)")
			_, _ = fmt.Fprint(sink.writer, ascii.DrawBox(strings.Join(lines, "\n"), 0))
			return nil
		}

		for _, entry := range entries {
			lines = append(lines, formatCooldownLine(entry, now))
		}

		_, _ = fmt.Fprint(sink.writer, ascii.DrawBox(strings.Join(lines, "\n"), 0))
		return nil
	},
}

func cooldownStatusPayload(entries []store.CooldownEntry, now time.Time) []map[string]any {
	payload := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		item := map[string]any{
			"key":             entry.Key,
			"cooling_down":    entry.State.Active(now),
			"last_request_at": entry.State.LastRequestAt.UTC().Format(time.RFC3339),
		}
		if entry.State.ExpiresAt != nil {
			item["expires_at"] = entry.State.ExpiresAt.UTC().Format(time.RFC3339)
			if remaining := entry.State.ExpiresAt.Sub(now); remaining > 0 {
				item["remaining_seconds"] = int((remaining + time.Second - 1) / time.Second)
			}
		}
		payload = append(payload, item)
	}
	return payload
}

func formatCooldownLine(entry store.CooldownEntry, now time.Time) string {
	expires := "-"
	state := "idle"
	if entry.State.ExpiresAt != nil {
		expires = entry.State.ExpiresAt.UTC().Format(time.RFC3339)
		if entry.State.Active(now) {
			state = "cooling-down"
		} else {
			state = "expired"
		}
	}
	return fmt.Sprintf("%s: state=%s expires_at=%s last_request_at=%s",
		entry.Key, state, expires, entry.State.LastRequestAt.UTC().Format(time.RFC3339))
}

var (
	cooldownResetYes    bool
	cooldownResetDryRun bool
	cooldownResetOutput string
	cooldownResetOut    string
	cooldownResetOutDir string
)

var cooldownResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset stored cooldown state",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(cooldownResetOutput)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		if !cooldownResetYes && !cooldownResetDryRun {
			return errors.New("reset requires --yes (or use --dry-run)")
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		entries, err := db.ListCooldowns(cmd.Context())
		if err != nil {
			return err
		}
		matched := len(entries)

		outPath := strings.TrimSpace(cooldownResetOut)
		outDir := strings.TrimSpace(cooldownResetOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}
		ext := outputExtension(format)
		if outDir != "" {
			var err error
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("cooldown.reset.%s", ext))
		}
		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		if cooldownResetDryRun {
			return writeCooldownResetResult(format, sink.writer, matched, 0, true)
		}

		deleted, err := db.ResetCooldowns(cmd.Context())
		if err != nil {
			return err
		}

		return writeCooldownResetResult(format, sink.writer, matched, deleted, false)
	},
}

func writeCooldownResetResult(format output.Format, w io.Writer, matched int, deleted int64, dryRun bool) error {
	result := map[string]any{
		"matched": matched,
		"deleted": deleted,
		"dry_run": dryRun,
	}

	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	}

	if dryRun {
		_, err := fmt.Fprintf(w, "Would delete %d cooldown entr(ies)\n", matched)
		return err
	}
	_, err := fmt.Fprintf(w, "Deleted %d/%d cooldown entr(ies)\n", deleted, matched)
	return err
}

func init() {
	cooldownStatusCmd.Flags().StringVar(&cooldownStatusOutput, "output-format", string(output.FormatTable), "Output format: table|json")
	cooldownStatusCmd.Flags().StringVar(&cooldownStatusOut, "out", "", "Write output to a file (default stdout)")
	cooldownStatusCmd.Flags().StringVar(&cooldownStatusOutDir, "out-dir", "", "Write output to a directory")

	cooldownResetCmd.Flags().BoolVar(&cooldownResetYes, "yes", false, "Confirm destructive reset")
	cooldownResetCmd.Flags().BoolVar(&cooldownResetDryRun, "dry-run", false, "Show what would be deleted")
	cooldownResetCmd.Flags().StringVar(&cooldownResetOutput, "output-format", string(output.FormatTable), "Output format: table|json")
	cooldownResetCmd.Flags().StringVar(&cooldownResetOut, "out", "", "Write output to a file (default stdout)")
	cooldownResetCmd.Flags().StringVar(&cooldownResetOutDir, "out-dir", "", "Write output to a directory")

	cooldownCmd.AddCommand(cooldownStatusCmd)
	cooldownCmd.AddCommand(cooldownResetCmd)
	rootCmd.AddCommand(cooldownCmd)
}
