package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	domain "github.com/collectwise/advisor/pkg/types"
)

func collectCmd() *cobra.Command {
	var (
		maxResults int
		condition  string
	)

	cmd := &cobra.Command{
		Use:   "collect <query>",
		Short: "Run one market data collection",
		Long: "Fans the query out to every configured marketplace, cleans the\n" +
			"results, and prints the aggregate collection summary.",
		Example: `  advisor collect "amazing spider-man 300"
  advisor collect "hulk 181" --max-results 25 --condition nm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return runCollect(cobraCmd, args[0], domain.SearchOptions{
				MaxResults: maxResults,
				Condition:  condition,
			})
		},
	}

	cmd.Flags().IntVar(&maxResults, "max-results", 50, "maximum results per marketplace")
	cmd.Flags().StringVar(&condition, "condition", "", "condition filter (nm, vf, ...)")

	return cmd
}

func init() {
	rootCmd.AddCommand(collectCmd())
}

func runCollect(cobraCmd *cobra.Command, query string, opts domain.SearchOptions) error {
	ctx := cobraCmd.Context()

	a, err := newApp(ctx, cfgFile)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.collector.Collect(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("collecting %q: %w", query, err)
	}

	if jsonOutput() {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Printf("Collected %q from %d/%d marketplaces\n",
		res.Query, res.MarketplacesSuccessful, res.MarketplacesSearched)
	fmt.Printf("  Listings: %d\n", res.Summary.TotalListings)
	if res.Summary.TotalListings > 0 {
		fmt.Printf("  Price:    %.2f - %.2f\n",
			res.Summary.PriceRange.Min, res.Summary.PriceRange.Max)
	}
	for name, msg := range res.Errors {
		fmt.Printf("  Failed:   %s: %s\n", name, msg)
	}
	for _, w := range res.Warnings {
		fmt.Printf("  Warning:  %s\n", w)
	}

	return nil
}
