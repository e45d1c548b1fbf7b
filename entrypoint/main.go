package main

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"scirel.ai/deppath/logger"
	"scirel.ai/deppath/types"
)

var version = "dev"

type Config struct {
	ConfigPath  string `envconfig:"DPE_CONFIG_PATH" default:""`
	RestAPIPort string `envconfig:"DPE_REST_API_PORT" default:"10000"`
}

var (
	env        Config
	configPath string
	cfg        types.Configuration
)

var mainLogger = logger.NewLogger("Main")

func main() {
	if err := rootCmd.Execute(); err != nil {
		mainLogger.Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "deppath",
	Short:         "Dependency path extraction and ranking for entity pairs",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetupLogging()
		if cmd.Name() == "version" {
			return nil
		}
		if err := envconfig.Process("", &env); err != nil {
			mainLogger.Err(err).Caller().Msg("Failed to read environment")
			return err
		}
		path := configPath
		if path == "" {
			path = env.ConfigPath
		}
		if path == "" {
			cfg = types.DefaultConfiguration()
			mainLogger.Info().Msg("No configuration file given, using defaults")
			return nil
		}
		loaded, err := types.LoadConfiguration(path)
		if err != nil {
			mainLogger.Err(err).Str("config_path", path).Msg("Failed to load configuration")
			return err
		}
		cfg = loaded
		mainLogger.Info().Str("config_path", path).Str("config_name", cfg.Name).Msg("Loaded configuration")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the yaml configuration (default $DPE_CONFIG_PATH)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("deppath", version)
	},
}
