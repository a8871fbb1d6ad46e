package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/collectwise/advisor/internal/config"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured marketplace adapters",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	type sourceInfo struct {
		Name      string  `json:"name"`
		BaseURL   string  `json:"base_url"`
		PerSecond float64 `json:"rate_per_second"`
		Burst     int     `json:"rate_burst"`
	}

	// API keys stay out of the output.
	infos := make([]sourceInfo, 0, len(cfg.Sources.Marketplaces))
	for _, m := range cfg.Sources.Marketplaces {
		infos = append(infos, sourceInfo{
			Name:      m.Name,
			BaseURL:   m.BaseURL,
			PerSecond: m.RateLimit.PerSecond,
			Burst:     m.RateLimit.Burst,
		})
	}

	if jsonOutput() {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	for _, s := range infos {
		fmt.Printf("%s\t%s\t%.1f req/s (burst %d)\n",
			s.Name, s.BaseURL, s.PerSecond, s.Burst)
	}

	return nil
}
