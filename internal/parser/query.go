package parser

import (
	"strings"

	"github.com/sells-group/itemmatch/internal/model"
)

const (
	maxQuerySpecPairs     = 2   // spec pairs appended to brand+category queries
	maxCategorySpecPairs  = 3   // spec pairs appended to category-only queries
	maxKeywordQueryTokens = 5   // keywords joined into the keyword query
	maxFallbackQueryLen   = 100 // original-text fallback truncation
)

// GenerateQueries produces the search-query ladder for an item, most specific
// first. The result contains no duplicates and no empty strings.
func GenerateQueries(item model.ItemDescription) []string {
	var queries []string

	if item.Brand != "" && item.Model != "" && item.Category != "" {
		queries = append(queries, item.Brand+" "+item.Model+" "+item.Category)
	}

	if item.Brand != "" && item.Model != "" {
		queries = append(queries, item.Brand+" "+item.Model)
	}

	if item.Brand != "" && item.Category != "" {
		if specs := joinSpecs(item.Specifications, maxQuerySpecPairs); specs != "" {
			queries = append(queries, item.Brand+" "+item.Category+" "+specs)
		} else {
			queries = append(queries, item.Brand+" "+item.Category)
		}
	}

	if item.Category != "" {
		if specs := joinSpecs(item.Specifications, maxCategorySpecPairs); specs != "" {
			queries = append(queries, item.Category+" "+specs)
		}
	}

	if len(item.Keywords) > 0 {
		kws := item.Keywords
		if len(kws) > maxKeywordQueryTokens {
			kws = kws[:maxKeywordQueryTokens]
		}
		queries = append(queries, strings.Join(kws, " "))
	}

	original := item.Text
	if runes := []rune(original); len(runes) > maxFallbackQueryLen {
		original = string(runes[:maxFallbackQueryLen]) + "..."
	}
	queries = append(queries, original)

	// Deduplicate preserving ladder order; skip empties.
	var unique []string
	seen := make(map[string]struct{})
	for _, q := range queries {
		if q == "" {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		unique = append(unique, q)
	}
	return unique
}

func joinSpecs(specs []model.Specification, limit int) string {
	if len(specs) > limit {
		specs = specs[:limit]
	}
	pairs := make([]string, 0, len(specs))
	for _, s := range specs {
		pairs = append(pairs, s.Name+" "+s.Value)
	}
	return strings.Join(pairs, " ")
}
