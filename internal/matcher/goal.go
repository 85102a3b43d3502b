package matcher

import (
	"fmt"
	"strings"

	"github.com/sells-group/itemmatch/internal/model"
)

// BuildResearchGoal renders the natural-language research instruction sent to
// the providers, combining the original text with every component the parser
// recovered.
func BuildResearchGoal(item model.ItemDescription) string {
	parts := []string{
		fmt.Sprintf("Find online products matching this item description: '%s'", item.Text),
	}

	if item.Category != "" {
		parts = append(parts, fmt.Sprintf("The item is a %s.", item.Category))
	}
	if item.Brand != "" {
		parts = append(parts, fmt.Sprintf("Brand: %s.", item.Brand))
	}
	if item.Model != "" {
		parts = append(parts, fmt.Sprintf("Model: %s.", item.Model))
	}
	if len(item.Specifications) > 0 {
		pairs := make([]string, 0, len(item.Specifications))
		for _, s := range item.Specifications {
			pairs = append(pairs, s.Name+": "+s.Value)
		}
		parts = append(parts, fmt.Sprintf("Specifications: %s.", strings.Join(pairs, ", ")))
	}

	parts = append(parts,
		"For each matching product found, provide:",
		"1. Product name and full description",
		"2. Current price in USD (if available)",
		"3. Direct product URL for purchase",
		"4. Brand and model information",
		"5. Product condition (new/used/refurbished)",
		"6. Retailer/source website name",
		"7. Product availability status",
		"8. Match confidence score (0-1)",
		"Focus on:",
		"- Current market prices for insurance reimbursement",
		"- Products available for immediate purchase",
		"- Reputable retailers and e-commerce sites",
		"- Exact or very similar product matches",
		"- Both new and refurbished options when relevant",
	)

	return strings.Join(parts, " ")
}

// taskOutputSchema describes the structured product array the task provider
// should return.
func taskOutputSchema(maxResults int) string {
	return fmt.Sprintf(
		"A JSON array of product objects, each containing: "+
			"name (string), price (number in USD), url (string), "+
			"brand (string), model (string), condition (string: new/used/refurbished), "+
			"source (string: retailer name), confidence_score (number 0-1), "+
			"description (string). Return up to %d products.",
		maxResults,
	)
}
