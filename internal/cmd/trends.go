package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adforge/adforge/internal/ailink"
	"github.com/adforge/adforge/internal/config"
	"github.com/adforge/adforge/internal/core/engine"
	errwrap "github.com/adforge/adforge/internal/errors"
	"github.com/adforge/adforge/internal/observability"
	"github.com/adforge/adforge/internal/output"
	"github.com/adforge/adforge/internal/trends"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Fetch trending topics",
}

var (
	trendsTopicsCountry   string
	trendsTopicsRange     string
	trendsTopicsTopN      int
	trendsTopicsTranslate bool
	trendsTopicsForce     bool
	trendsTopicsOutput    string
	trendsTopicsOut       string
	trendsTopicsOutDir    string
)

var trendsTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Fetch trending topics for a market",
	Long: `Fetch trending search topics for a Southeast Asia market.

The fetch shares the persistent request cooldown with the HTTP server: a new
window begins after each fetch, and requests inside the window are refused.
Use --force to bypass the cooldown check (the window is still replaced).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(trendsTopicsOutput)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		cfg, err := config.Load(ctx)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		req := trends.TopicsRequest{
			Country:   strings.ToUpper(strings.TrimSpace(trendsTopicsCountry)),
			TimeRange: strings.TrimSpace(trendsTopicsRange),
			TopN:      trendsTopicsTopN,
			Translate: trendsTopicsTranslate,
		}
		// Rejected requests never consume the window.
		if _, _, err := req.Validate(); err != nil {
			return err
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		throttle := &engine.Throttle{
			Store:        db,
			Interval:     cfg.Throttle.Interval,
			TickInterval: cfg.Throttle.TickInterval,
			Logger:       observability.CLILogger,
		}
		throttle.RestoreOnInit(ctx)
		defer throttle.Stop()

		if !trendsTopicsForce {
			if decision := throttle.TryBegin(ctx, cfg.Throttle.Interval); !decision.Granted {
				remaining := int((decision.Remaining + time.Second - 1) / time.Second)
				return errwrap.NewRateLimitedError(
					fmt.Sprintf("cooldown active: retry in %d second(s), or pass --force", remaining))
			}
		}

		service, err := buildTrendsService(cfg)
		if err != nil {
			return err
		}

		result, err := service.TrendingTopics(ctx, req)
		if err != nil {
			return err
		}

		// The window restarts after every fetch, fallback included.
		throttle.BeginCooldown(ctx, cfg.Throttle.Interval)

		outPath := strings.TrimSpace(trendsTopicsOut)
		outDir := strings.TrimSpace(trendsTopicsOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}
		if outDir != "" {
			var err error
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("trends.topics.%s", outputExtension(format)))
		}
		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		rendered, err := output.NewFormatter(format).FormatTopics(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(sink.writer, rendered)
		return err
	},
}

var trendsMarketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "List supported markets and time ranges",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Markets:")
		for _, country := range trends.CountryList() {
			fmt.Printf("  %s  %s\n", country.Code, country.Name)
		}
		fmt.Println("\nTime ranges:")
		for _, tr := range trends.TimeRangeList() {
			fmt.Printf("  %-6s %s (%s)\n", tr.Key, tr.Name, tr.Timeframe)
		}
		return nil
	},
}

var trendsTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Probe the trends provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		service, err := buildTrendsService(cfg)
		if err != nil {
			return err
		}

		ok, message := service.TestConnection(cmd.Context())
		fmt.Println(message)
		if !ok {
			return fmt.Errorf("trends provider unreachable")
		}
		return nil
	},
}

// buildTrendsService wires the provider client and optional AI translator
// from config.
func buildTrendsService(cfg *config.Config) (*trends.Service, error) {
	client := trends.NewClient(cfg.Trends.BaseURL)
	client.Timeout = cfg.Trends.Timeout
	if cfg.Trends.Lang != "" {
		client.Lang = cfg.Trends.Lang
	}
	client.TZOffset = cfg.Trends.TZOffset

	service := &trends.Service{
		Client: client,
		Logger: observability.CLILogger,
	}

	if cfg.Trends.Translate {
		registry, err := buildPromptRegistry(cfg)
		if err != nil {
			return nil, fmt.Errorf("loading prompts: %w", err)
		}
		catalog, err := buildSchemaCatalog()
		if err != nil {
			return nil, fmt.Errorf("loading schemas: %w", err)
		}
		service.Translator = &trends.AITranslator{
			AI: &ailink.Service{
				Providers: ailink.NewRegistry(cfg.AILink),
				Registry:  registry,
				Catalog:   catalog,
			},
			Model: cfg.Trends.TranslateModel,
		}
	}

	return service, nil
}

func init() {
	trendsTopicsCmd.Flags().StringVarP(&trendsTopicsCountry, "country", "c", "VN", "Market country code")
	trendsTopicsCmd.Flags().StringVarP(&trendsTopicsRange, "range", "r", "today", "Time range: today|week|month")
	trendsTopicsCmd.Flags().IntVar(&trendsTopicsTopN, "top", 10, "Number of topics")
	trendsTopicsCmd.Flags().BoolVar(&trendsTopicsTranslate, "translate", true, "Translate topics to Simplified Chinese")
	trendsTopicsCmd.Flags().BoolVar(&trendsTopicsForce, "force", false, "Bypass the cooldown check")
	trendsTopicsCmd.Flags().StringVar(&trendsTopicsOutput, "output-format", string(output.FormatTable), "Output format: table|json|markdown")
	trendsTopicsCmd.Flags().StringVar(&trendsTopicsOut, "out", "", "Write output to a file (default stdout)")
	trendsTopicsCmd.Flags().StringVar(&trendsTopicsOutDir, "out-dir", "", "Write output to a directory")

	trendsCmd.AddCommand(trendsTopicsCmd)
	trendsCmd.AddCommand(trendsMarketsCmd)
	trendsCmd.AddCommand(trendsTestCmd)
	rootCmd.AddCommand(trendsCmd)
}
