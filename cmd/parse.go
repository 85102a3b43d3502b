package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/itemmatch/internal/parser"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse <description>",
	Short: "Parse an item description and show the generated search queries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := parser.NewItemParser()
		item := p.Parse(args[0])
		queries := parser.GenerateQueries(item)

		if parseJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Item    any      `json:"item"`
				Queries []string `json:"queries"`
			}{item, queries})
		}

		fmt.Printf("Text:     %s\n", item.Text)
		fmt.Printf("Category: %s\n", orNone(item.Category))
		fmt.Printf("Brand:    %s\n", orNone(item.Brand))
		fmt.Printf("Model:    %s\n", orNone(item.Model))
		if len(item.Specifications) > 0 {
			fmt.Println("Specifications:")
			for _, s := range item.Specifications {
				fmt.Printf("  %s: %s\n", s.Name, s.Value)
			}
		}
		if len(item.Keywords) > 0 {
			fmt.Printf("Keywords: %v\n", item.Keywords)
		}
		fmt.Println("Queries:")
		for i, q := range queries {
			fmt.Printf("  %d. %s\n", i+1, q)
		}
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print parsed item as JSON")
	rootCmd.AddCommand(parseCmd)
}
