package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adforge/adforge/internal/ailink"
	"github.com/adforge/adforge/internal/config"
	"github.com/adforge/adforge/internal/core/engine"
	"github.com/adforge/adforge/internal/observability"
	"github.com/adforge/adforge/internal/output"
)

var generateCmd = &cobra.Command{
	Use:   "generate [game-background]",
	Short: "Generate ad creatives",
	Long:  "Generate game ad creative concepts from a game background using AI",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("idea", "i", "", "Optional user idea to steer the creatives")
	generateCmd.Flags().StringP("background-file", "f", "", "Read game background from file (truncated to 4000 chars)")
	generateCmd.Flags().IntP("count", "n", 0, "Number of creatives (bounded by the model)")
	generateCmd.Flags().String("model", "", "Model override")
	generateCmd.Flags().Int("timeout", 0, "Generation timeout in seconds")
	generateCmd.Flags().StringArray("select", nil, "Dimension selection as name=id[,id...] (repeatable)")
	generateCmd.Flags().Bool("save", false, "Persist generated creatives to the store")
	generateCmd.Flags().String("output-format", string(output.FormatTable), "Output format: table|json|markdown")
	generateCmd.Flags().String("out", "", "Write output to a file (default stdout)")
	generateCmd.Flags().String("out-dir", "", "Write output to a directory")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	var background string
	if len(args) > 0 {
		background = strings.TrimSpace(args[0])
	}

	idea, _ := cmd.Flags().GetString("idea")
	backgroundFile, _ := cmd.Flags().GetString("background-file")
	count, _ := cmd.Flags().GetInt("count")
	modelOverride, _ := cmd.Flags().GetString("model")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	selections, _ := cmd.Flags().GetStringArray("select")
	save, _ := cmd.Flags().GetBool("save")

	if background == "" && backgroundFile != "" {
		content, err := readTruncatedFile(backgroundFile, 4000)
		if err != nil {
			return fmt.Errorf("reading background file: %w", err)
		}
		background = strings.TrimSpace(content)
	}
	if background == "" {
		return errors.New("game background is required")
	}

	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}

	selected, err := parseDimensionSelections(selections)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	showAIGuidanceWarning(cfg.AILink, cmd.ErrOrStderr())

	registry, err := buildPromptRegistry(cfg)
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}
	catalog, err := buildSchemaCatalog()
	if err != nil {
		return fmt.Errorf("loading schemas: %w", err)
	}
	service := &ailink.Service{
		Providers: ailink.NewRegistry(cfg.AILink),
		Registry:  registry,
		Catalog:   catalog,
	}

	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	generator := &engine.Generator{
		AI:      service,
		Options: db,
		Logger:  observability.CLILogger,
	}

	if modelOverride == "" {
		modelOverride = cfg.Engine.DefaultModel
	}
	if timeoutSec == 0 && cfg.Engine.DefaultTimeout > 0 {
		timeoutSec = int(cfg.Engine.DefaultTimeout / time.Second)
	}

	creatives, err := generator.Generate(ctx, engine.GenerateParams{
		GameBackground:     background,
		UserIdea:           idea,
		SelectedDimensions: selected,
		Count:              count,
		Model:              modelOverride,
		TimeoutSec:         timeoutSec,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if save {
		saved, err := db.SaveCreatives(ctx, creatives, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("saving creatives: %w", err)
		}
		creatives = saved
	}

	outPath, outDir, err := resolveOutputTargets(cmd)
	if err != nil {
		return err
	}
	if outDir != "" {
		outDir, err = ensureOutDir(outDir)
		if err != nil {
			return err
		}
		name := sanitizeFilename(strings.Fields(background)[0])
		outPath = filepath.Join(outDir, fmt.Sprintf("%s.creatives.%s", name, outputExtension(format)))
	}
	sink, err := openSink(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = sink.close() }()

	rendered, err := output.NewFormatter(format).FormatCreatives(creatives)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(sink.writer, rendered)
	return err
}

// parseDimensionSelections turns repeated name=id[,id...] flags into the
// selection map the generator consumes.
func parseDimensionSelections(selections []string) (map[string][]int64, error) {
	if len(selections) == 0 {
		return nil, nil
	}

	selected := make(map[string][]int64, len(selections))
	for _, raw := range selections {
		name, list, found := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("invalid --select value %q (expected name=id[,id...])", raw)
		}
		for _, part := range strings.Split(list, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid option id %q in --select %q", part, raw)
			}
			selected[name] = append(selected[name], id)
		}
		if len(selected[name]) == 0 {
			return nil, fmt.Errorf("no option ids in --select %q", raw)
		}
	}
	return selected, nil
}

func readTruncatedFile(path string, maxLen int) (result string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if maxLen <= 0 {
		return "", nil
	}

	reader := bufio.NewReader(f)
	var builder strings.Builder
	builder.Grow(maxLen + 3)

	count := 0
	for count < maxLen+1 {
		r, _, readErr := reader.ReadRune()
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return "", readErr
		}
		if count < maxLen {
			builder.WriteRune(r)
		}
		count++
	}

	content := builder.String()
	if count > maxLen {
		content += "..."
	}
	return content, nil
}
