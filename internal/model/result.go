package model

import "time"

// Strategy selects the provider ordering and fallback policy for a request.
type Strategy string

const (
	StrategySearchFirst Strategy = "search_first"
	StrategyTaskFirst   Strategy = "task_first"
	StrategySearchOnly  Strategy = "search_only"
	StrategyTaskOnly    Strategy = "task_only"
)

// Strategies lists the accepted strategy values in documentation order.
var Strategies = []Strategy{
	StrategySearchFirst,
	StrategyTaskFirst,
	StrategySearchOnly,
	StrategyTaskOnly,
}

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	for _, known := range Strategies {
		if Strategy(s) == known {
			return known, nil
		}
	}
	return "", ErrInvalidStrategy
}

// SearchMetadata describes how a result was produced: the query ladder, the
// research goal sent to the providers, which provider ultimately served the
// result, and why a fallback hop happened, if one did.
type SearchMetadata struct {
	SearchQueries    []string      `json:"search_queries"`
	ResearchGoal     string        `json:"research_goal"`
	APIUsed          string        `json:"api_used"`
	APIDuration      time.Duration `json:"api_duration"`
	FallbackReason   string        `json:"fallback_reason,omitempty"`
	PerformanceNotes string        `json:"performance_notes,omitempty"`
}

// SearchResult is the complete outcome of one matching request.
type SearchResult struct {
	Query           ItemDescription `json:"query"`
	MatchedProducts []Product       `json:"matched_products"`
	SearchMetadata  SearchMetadata  `json:"search_metadata"`
	ProcessingTime  time.Duration   `json:"processing_time"`
	TotalResults    int             `json:"total_results"`
}
