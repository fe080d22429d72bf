package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xaviermilgo/solana-akinator/core"
	"github.com/xaviermilgo/solana-akinator/logger"
	"gopkg.in/yaml.v3"
)

func newRootCmd() *cobra.Command {
	v := newViper()
	var configPath string

	cmd := &cobra.Command{
		Use:           "akinator",
		Short:         "Let the Jinn guess a wallet address from a Twitter handle.",
		Args:          cobra.NoArgs,
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, configPath)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Logging); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			logger.Info("Starting akinator", "version", releaseVersion, "url", cfg.Connection.URL)
			defer logger.Info("Shutting down akinator")

			return play(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	fs := cmd.PersistentFlags()
	fs.StringVarP(&configPath, "config", "c", "", "path to config file (default searches ./config.yaml, ./config/config.yaml, /etc/akinator/config.yaml)")
	fs.String("url", core.DefaultURL, "game server websocket URL (env: AKINATOR_CONNECTION_URL)")
	fs.String("log-level", "info", "log level: debug, info, warn, error (env: AKINATOR_LOGGING_LEVEL)")
	fs.BoolP("debug", "d", false, "enable debug logging (env: AKINATOR_DEBUG)")

	if err := bindFlags(v, fs); err != nil {
		panic(err)
	}

	cmd.AddCommand(newConfigCmd(v, &configPath))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("akinator v{{.Version}}\n")

	return cmd
}

func newConfigCmd(v *viper.Viper, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(v, *configPath); err != nil {
				return err
			}

			out, err := yaml.Marshal(v.AllSettings())
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
