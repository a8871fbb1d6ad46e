package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	domain "github.com/collectwise/advisor/pkg/types"
)

func recommendCmd() *cobra.Command {
	var (
		title     string
		publisher string
		issue     string
		risk      string
		horizon   string
	)

	cmd := &cobra.Command{
		Use:   "recommend <query>",
		Short: "Produce a recommendation for one item",
		Long: "Runs the full advisory pipeline for a single item: collects market\n" +
			"data, scores triggers, and prints the resulting recommendation.",
		Example: `  advisor recommend "amazing spider-man 300"
  advisor recommend "hulk 181" --title "Incredible Hulk #181" --publisher Marvel --risk aggressive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			item := domain.ItemMetadata{
				Title:     title,
				Publisher: publisher,
				Issue:     issue,
			}
			if item.Title == "" {
				item.Title = args[0]
			}

			var prefs *domain.UserPreferences
			if risk != "" || horizon != "" {
				prefs = &domain.UserPreferences{
					RiskTolerance: domain.RiskTolerance(risk),
					Horizon:       domain.InvestmentHorizon(horizon),
				}
			}

			return runRecommend(cobraCmd, args[0], item, prefs)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "item title (defaults to the query)")
	cmd.Flags().StringVar(&publisher, "publisher", "", "item publisher")
	cmd.Flags().StringVar(&issue, "issue", "", "issue number")
	cmd.Flags().StringVar(&risk, "risk", "", "risk tolerance (conservative, moderate, aggressive)")
	cmd.Flags().StringVar(&horizon, "horizon", "", "investment horizon (short_term, medium_term, long_term)")

	return cmd
}

func init() {
	rootCmd.AddCommand(recommendCmd())
}

func runRecommend(
	cobraCmd *cobra.Command,
	query string,
	item domain.ItemMetadata,
	prefs *domain.UserPreferences,
) error {
	ctx := cobraCmd.Context()

	a, err := newApp(ctx, cfgFile)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.pipeline.Advise(ctx, item, query, prefs)
	if err != nil {
		return fmt.Errorf("advising %q: %w", query, err)
	}

	if jsonOutput() {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	printRecommendation(rec)
	return nil
}

func printRecommendation(rec *domain.Recommendation) {
	fmt.Printf("Recommendation %s\n", rec.ID)
	fmt.Printf("  Action:     %s\n", rec.Primary.Action)
	fmt.Printf("  Score:      %.2f\n", rec.Primary.Score)
	fmt.Printf("  Confidence: %.2f\n", rec.Confidence.Overall)
	fmt.Printf("  Urgency:    %s\n", rec.Primary.Urgency)

	if len(rec.Secondary) > 0 {
		alts := make([]string, len(rec.Secondary))
		for i, s := range rec.Secondary {
			alts[i] = fmt.Sprintf("%s (%.2f)", s.Action, s.Score)
		}
		fmt.Printf("  Also:       %s\n", strings.Join(alts, ", "))
	}

	for _, r := range rec.Reasoning {
		fmt.Printf("  - %s\n", r)
	}

	if rec.Fallback {
		fmt.Println("  Note: produced with insufficient data")
	}
}
