package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/itemmatch/internal/model"
)

var (
	matchStrategy   string
	matchMaxResults int
	matchJSON       bool
)

var matchCmd = &cobra.Command{
	Use:   "match <description>",
	Short: "Find purchasable products matching an item description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		m, err := initMatcher("match")
		if err != nil {
			return err
		}

		strategy := matchStrategy
		if strategy == "" {
			strategy = cfg.Match.Strategy
		}
		maxResults := matchMaxResults
		if maxResults == 0 {
			maxResults = cfg.Match.MaxResults
		}

		result, err := m.FindMatchingProducts(ctx, args[0], maxResults, model.Strategy(strategy))
		if err != nil {
			return eris.Wrap(err, "match")
		}

		zap.L().Info("match complete",
			zap.String("api_used", result.SearchMetadata.APIUsed),
			zap.Int("products", len(result.MatchedProducts)),
			zap.Duration("processing_time", result.ProcessingTime),
		)

		if matchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printResult(result)
		return nil
	},
}

func printResult(result *model.SearchResult) {
	fmt.Printf("Query: %s\n", result.Query.Text)
	fmt.Printf("API used: %s (%.2fs)\n", result.SearchMetadata.APIUsed, result.SearchMetadata.APIDuration.Seconds())
	if result.SearchMetadata.FallbackReason != "" {
		fmt.Printf("Fallback reason: %s\n", result.SearchMetadata.FallbackReason)
	}
	fmt.Printf("Matched %d product(s):\n", len(result.MatchedProducts))
	for i, p := range result.MatchedProducts {
		fmt.Printf("\n%d. %s\n", i+1, p.Name)
		if p.Price != nil {
			fmt.Printf("   Price: %s %s\n", p.Price.String(), p.Currency)
		}
		if p.Brand != "" {
			fmt.Printf("   Brand: %s\n", p.Brand)
		}
		if p.URL != "" {
			fmt.Printf("   URL: %s\n", p.URL)
		}
		fmt.Printf("   Confidence: %.2f\n", p.Confidence())
	}
}

func init() {
	matchCmd.Flags().StringVar(&matchStrategy, "strategy", "",
		fmt.Sprintf("api strategy: %s (default from config)", strategyNames()))
	matchCmd.Flags().IntVar(&matchMaxResults, "max-results", 0, "maximum products to return (default from config)")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "print result as JSON")
	rootCmd.AddCommand(matchCmd)
}

func strategyNames() string {
	names := make([]string, len(model.Strategies))
	for i, s := range model.Strategies {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
