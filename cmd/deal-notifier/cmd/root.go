// Package cmd implements the CLI commands for deal-notifier.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/deal-notifier/internal/config"
	"github.com/donaldgifford/deal-notifier/pkg/logger"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

var rootCmd = &cobra.Command{
	Use:   "deal-notifier",
	Short: "Report new Pipedrive deals over WhatsApp",
	Long: "deal-notifier polls a Pipedrive deal filter, works out which deal IDs have\n" +
		"not been reported yet, and sends them to a WhatsApp recipient. Reported IDs\n" +
		"are remembered so repeated runs only mention new deals.",
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initViper)

	rootCmd.PersistentFlags().
		String("config", "", "YAML config file (optional, environment variables always apply)")
	rootCmd.PersistentFlags().
		String("env-file", ".env", "dotenv file loaded into the environment if present")
	rootCmd.PersistentFlags().
		String("log-level", "", "override logging.level (debug, info, warn, error)")

	cobra.CheckErr(viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")))
	cobra.CheckErr(viper.BindPFlag("env_file", rootCmd.PersistentFlags().Lookup("env-file")))
	cobra.CheckErr(viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level")))

	rootCmd.AddCommand(
		runCommand(),
		serveCommand(),
		stateCommand(),
		migrateCommand(),
		versionCommand(),
	)
}

// initViper lets DEAL_NOTIFIER_CONFIG, DEAL_NOTIFIER_ENV_FILE and
// DEAL_NOTIFIER_LOG_LEVEL stand in for the persistent flags.
func initViper() {
	viper.SetEnvPrefix("DEAL_NOTIFIER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig builds the configuration and logger every command starts from.
// It fails before any network call when a required setting is missing.
func loadConfig() (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(viper.GetString("env_file")); err != nil {
		return nil, nil, domain.NewError(domain.KindConfiguration, "loading env file", err)
	}

	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, nil, err
	}

	if err := overrideLogLevel(cfg, viper.GetString("log_level")); err != nil {
		return nil, nil, err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	return cfg, log, nil
}

func overrideLogLevel(cfg *config.Config, level string) error {
	if level == "" {
		return nil
	}
	if !logger.ValidLevel(level) {
		return domain.NewError(domain.KindConfiguration, "parsing --log-level",
			fmt.Errorf("must be one of: debug, info, warn, error (got %q)", level))
	}
	cfg.Logging.Level = level
	return nil
}
