// Package cmd provides the command-line interface for driftline with
// configuration loading from multiple sources.
//
// Configuration precedence, highest to lowest:
//  1. Command-line flags (--config, --port, --feed-url, ...)
//  2. DRIFTLINE_CONFIG_FILE environment variable (custom config path)
//  3. Individual environment variables (DRIFTLINE_FEED_URL, ...)
//  4. .driftline.yml in the current directory
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "driftline",
	Short: "A live long-form content site served from a polled JSON feed",
	Long: `Driftline renders a content-driven single-page site from a polled JSON
feed: a home feed, long-form articles, and embedded data widgets, navigated
via URL-fragment routing.

The engine polls the feed, fingerprints each response, and re-renders only
when content actually changed. Connected browsers receive updates over a
WebSocket and re-render with animated view transitions where supported.

Quick Start:
  driftline serve --feed-url https://example.com/feed.json
  driftline fetch --feed-url ./feed.json
  driftline config`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .driftline.yml, can also use DRIFTLINE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig loads configuration per the precedence documented on the
// package. Missing config files degrade gracefully to flag and env
// values.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("DRIFTLINE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".driftline")
	}

	viper.SetEnvPrefix("DRIFTLINE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
