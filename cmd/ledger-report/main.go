// Package main provides an offline report over an exported bet ledger.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/betting-tracker/internal/analytics"
	"github.com/yourusername/betting-tracker/internal/models"
)

var (
	inputFile string
	compact   bool

	scope   string
	filters analytics.FilterParams
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&inputFile, "input", "i", "-", "JSON array of bets (- for stdin)")
	rootCmd.PersistentFlags().BoolVar(&compact, "compact", false, "Print JSON without indentation")

	summarizeCmd.Flags().StringVar(&scope, "scope", string(analytics.ScopeAll), "Summary scope (all or filtered)")
	summarizeCmd.Flags().StringVar(&filters.StartDate, "start", "", "Earliest bet date")
	summarizeCmd.Flags().StringVar(&filters.EndDate, "end", "", "Latest bet date")
	summarizeCmd.Flags().StringSliceVar(&filters.Sports, "sport", nil, "Sports to include")
	summarizeCmd.Flags().StringSliceVar(&filters.BetTypes, "bet-type", nil, "Bet types to include")
	summarizeCmd.Flags().StringSliceVar(&filters.Outcomes, "outcome", nil, "Outcomes to include")

	rootCmd.AddCommand(summarizeCmd, statsCmd, facetsCmd)
}

var rootCmd = &cobra.Command{
	Use:          "ledger-report",
	Short:        "Summarize a betting ledger exported as JSON",
	SilenceUsage: true,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Print the analytics summary",
	Long:  `Prints metrics, breakdowns, data issues, drawdown and a sample of recent bets. Filters apply only with --scope filtered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bets, err := readBets(cmd.InOrStdin())
		if err != nil {
			return err
		}
		spec, err := analytics.ParseFilterSpec(filters)
		if err != nil {
			return err
		}
		summary, err := analytics.Summarize(bets, analytics.Scope(scope), spec)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), summary)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print profile statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		bets, err := readBets(cmd.InOrStdin())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), analytics.ComputeUserStats(bets))
	},
}

var facetsCmd = &cobra.Command{
	Use:   "facets",
	Short: "List the sports, bet types and outcomes present",
	RunE: func(cmd *cobra.Command, args []string) error {
		bets, err := readBets(cmd.InOrStdin())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), analytics.BuildFilterFacets(analytics.NormalizeAll(bets)))
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func readBets(stdin io.Reader) ([]models.RawBet, error) {
	r := stdin
	if inputFile != "-" {
		f, err := os.Open(inputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var bets []models.RawBet
	if err := json.NewDecoder(r).Decode(&bets); err != nil {
		return nil, fmt.Errorf("failed to decode bets: %w", err)
	}
	return bets, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
