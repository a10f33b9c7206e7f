package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adforge/adforge/internal/output"
)

var (
	dimensionsListOutput string
	dimensionsListOut    string
	dimensionsListOutDir string
)

var dimensionsCmd = &cobra.Command{
	Use:   "dimensions",
	Short: "Manage creative dimensions",
}

var dimensionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List creative dimensions and their options",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(dimensionsListOutput)
		if err != nil {
			return err
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		dimensions, err := db.ListDimensions(cmd.Context())
		if err != nil {
			return err
		}

		outPath := strings.TrimSpace(dimensionsListOut)
		outDir := strings.TrimSpace(dimensionsListOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}
		if outDir != "" {
			var err error
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("dimensions.list.%s", outputExtension(format)))
		}
		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		rendered, err := output.NewFormatter(format).FormatDimensions(dimensions)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(sink.writer, rendered)
		return err
	},
}

func init() {
	dimensionsListCmd.Flags().StringVar(&dimensionsListOutput, "output-format", string(output.FormatTable), "Output format: table|json|markdown")
	dimensionsListCmd.Flags().StringVar(&dimensionsListOut, "out", "", "Write output to a file (default stdout)")
	dimensionsListCmd.Flags().StringVar(&dimensionsListOutDir, "out-dir", "", "Write output to a directory")

	dimensionsCmd.AddCommand(dimensionsListCmd)
	rootCmd.AddCommand(dimensionsCmd)
}
