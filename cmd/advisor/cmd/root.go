// Package cmd implements the CLI commands for the advisor service.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Collectible market pricing advisor",
	Long: "An API-first service that collects collectible market listings from\n" +
		"configured marketplaces, scores external market triggers, and produces\n" +
		"actionable sell/hold/grade/monitor recommendations with confidence and ROI.",
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().String("output", "text", "output format (text, json)")

	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	viper.SetEnvPrefix("ADVISOR")
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
