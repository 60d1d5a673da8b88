// Package cmd wires the scanner into a CLI: one-off scans, the HTTP service,
// and registry administration.
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string
var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:   "secscan",
	Short: "Web security assessment: heuristic checks, verdicts, and ML fusion",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath(".")
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".secscan")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("SECSCAN")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		setConfigDefaults()
		_ = viper.ReadInConfig()

		var err error
		if viper.GetBool("debug") {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func setConfigDefaults() {
	viper.SetDefault("debug", false)
	viper.SetDefault("fetch.timeout", 15*time.Second)
	viper.SetDefault("fetch.renderer", "http")
	viper.SetDefault("fetch.rate_limit", 2.0)
	viper.SetDefault("scan.check_timeout", 8*time.Second)
	viper.SetDefault("scan.budget", 45*time.Second)
	viper.SetDefault("scan.worker_limit", 6)
	viper.SetDefault("scan.bypass_robots", false)
	viper.SetDefault("ml.weight", 0.3)
	viper.SetDefault("ml.endpoint", "")
	viper.SetDefault("registry.backend", "memory")
	viper.SetDefault("registry.dsn", "")
	viper.SetDefault("serve.addr", ":8090")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.secscan.yaml)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(registryCmd)
}
