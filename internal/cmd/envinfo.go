package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/adforge/adforge/internal/config"
	"github.com/adforge/adforge/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display comprehensive environment, configuration, and version information.",
	Run: func(cmd *cobra.Command, args []string) {
		version := crucible.GetVersion()

		observability.CLILogger.Info("=== AdForge Environment Information ===")
		observability.CLILogger.Info("")

		// Application Info
		identity := GetAppIdentity()
		observability.CLILogger.Info("Application:")
		observability.CLILogger.Info("  Name:       " + identity.BinaryName)
		observability.CLILogger.Info("  Version:    " + versionInfo.Version)
		observability.CLILogger.Info("  Commit:     " + versionInfo.Commit)
		observability.CLILogger.Info("  Built:      " + versionInfo.BuildDate)
		observability.CLILogger.Info("")

		// SSOT Info
		observability.CLILogger.Info("SSOT:")
		observability.CLILogger.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		observability.CLILogger.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		observability.CLILogger.Info("")

		// Runtime Info
		observability.CLILogger.Info("Runtime:")
		observability.CLILogger.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		observability.CLILogger.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		observability.CLILogger.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		observability.CLILogger.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		observability.CLILogger.Info("")

		cfg, err := config.Load(cmd.Context())
		if err != nil {
			observability.CLILogger.Warn("Config load failed", zap.Error(err))
			return
		}

		// Configuration
		observability.CLILogger.Info("Configuration:")
		observability.CLILogger.Info("  Server Host:    "+cfg.Server.Host, zap.String("host", cfg.Server.Host))
		observability.CLILogger.Info(fmt.Sprintf("  Server Port:    %d", cfg.Server.Port), zap.Int("port", cfg.Server.Port))
		observability.CLILogger.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
		observability.CLILogger.Info("  Log Profile:    "+cfg.Logging.Profile, zap.String("log_profile", cfg.Logging.Profile))
		observability.CLILogger.Info("  DB Driver:      "+cfg.Store.Driver, zap.String("db_driver", cfg.Store.Driver))
		if strings.TrimSpace(cfg.Store.URL) != "" {
			observability.CLILogger.Info("  DB URL:         "+cfg.Store.URL, zap.String("db_url", cfg.Store.URL))
		} else {
			observability.CLILogger.Info("  DB Path:        "+cfg.Store.Path, zap.String("db_path", cfg.Store.Path))
		}
		observability.CLILogger.Info(fmt.Sprintf("  Metrics Port:   %d", cfg.Metrics.Port), zap.Int("metrics_port", cfg.Metrics.Port))
		observability.CLILogger.Info("  Config File:    "+config.DefaultConfigPath(), zap.String("config_file", config.DefaultConfigPath()))
		observability.CLILogger.Info("")

		// Trends Provider Configuration
		observability.CLILogger.Info("Trends:")
		observability.CLILogger.Info("  Base URL:       "+cfg.Trends.BaseURL, zap.String("trends_base_url", cfg.Trends.BaseURL))
		observability.CLILogger.Info("  Timeout:        " + cfg.Trends.Timeout.String())
		observability.CLILogger.Info("  Lang:           " + cfg.Trends.Lang)
		observability.CLILogger.Info(fmt.Sprintf("  Translate:      %t", cfg.Trends.Translate), zap.Bool("trends_translate", cfg.Trends.Translate))
		if strings.TrimSpace(cfg.Trends.TranslateModel) != "" {
			observability.CLILogger.Info("  Translate Model: " + cfg.Trends.TranslateModel)
		}
		observability.CLILogger.Info("")

		// Throttle Configuration
		observability.CLILogger.Info("Throttle:")
		observability.CLILogger.Info("  Interval:       "+cfg.Throttle.Interval.String(), zap.Duration("throttle_interval", cfg.Throttle.Interval))
		observability.CLILogger.Info("  Tick Interval:  " + cfg.Throttle.TickInterval.String())
		observability.CLILogger.Info("")

		// AILink Provider Configuration
		observability.CLILogger.Info("AILink:")
		observability.CLILogger.Info("  Default Provider: " + cfg.AILink.DefaultProvider)
		observability.CLILogger.Info("  Default Timeout:  " + cfg.AILink.DefaultTimeout.String())
		providerID := strings.TrimSpace(cfg.AILink.DefaultProvider)
		if providerID == "" {
			providerID = "(unset)"
		}
		providerCfg, ok := cfg.AILink.Providers[providerID]
		if !ok {
			observability.CLILogger.Info(fmt.Sprintf("  %s: (not configured)", providerID))
		} else {
			observability.CLILogger.Info(fmt.Sprintf("  %s.enabled: %t", providerID, providerCfg.Enabled))
			observability.CLILogger.Info(fmt.Sprintf("  %s.ai_provider: %s", providerID, providerCfg.AIProvider))
			observability.CLILogger.Info(fmt.Sprintf("  %s.base_url: %s", providerID, providerCfg.BaseURL))
			observability.CLILogger.Info(fmt.Sprintf("  %s.model: %s", providerID, providerCfg.Models["default"]))
			if len(providerCfg.Credentials) > 0 && strings.TrimSpace(providerCfg.Credentials[0].APIKey) != "" {
				observability.CLILogger.Info(fmt.Sprintf("  %s.credentials[0].api_key: (set)", providerID))
			} else {
				observability.CLILogger.Info(fmt.Sprintf("  %s.credentials[0].api_key: (not set)", providerID))
			}
		}
		observability.CLILogger.Info("")

		// Generation Engine Configuration
		observability.CLILogger.Info("Engine:")
		observability.CLILogger.Info("  Default Model:    " + cfg.Engine.DefaultModel)
		observability.CLILogger.Info("  Default Timeout:  " + cfg.Engine.DefaultTimeout.String())
		observability.CLILogger.Info("")

		observability.CLILogger.Info("=== End Environment Information ===")
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
