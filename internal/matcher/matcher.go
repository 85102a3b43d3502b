// Package matcher is the control core: it validates a request, parses the
// item description, and drives the provider strategy to a ranked product
// list.
package matcher

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/itemmatch/internal/model"
	"github.com/sells-group/itemmatch/internal/parser"
	"github.com/sells-group/itemmatch/pkg/parallel"
)

// Hard-coded policy constants carried over from the original service. Kept
// as named, overridable defaults: behavior parity matters more than
// re-derived "better" values.
const (
	// DefaultSearchOverfetch multiplies max_results on search calls so
	// extraction has more raw material to filter.
	DefaultSearchOverfetch = 3
	// DefaultSufficientDivisor sets the fallback gate: a primary call is
	// sufficient when it yields at least max_results / divisor products.
	DefaultSufficientDivisor = 2

	// DefaultMaxResults applies when the caller passes no limit.
	DefaultMaxResults = 5

	defaultMaxCharsPerResult = 1500
)

// Options tune orchestration policy.
type Options struct {
	SearchOverfetch   int
	SufficientDivisor int
	MaxCharsPerResult int
	SearchProcessor   parallel.Processor
	TaskProcessor     parallel.Processor
}

func (o Options) withDefaults() Options {
	if o.SearchOverfetch <= 0 {
		o.SearchOverfetch = DefaultSearchOverfetch
	}
	if o.SufficientDivisor <= 0 {
		o.SufficientDivisor = DefaultSufficientDivisor
	}
	if o.MaxCharsPerResult <= 0 {
		o.MaxCharsPerResult = defaultMaxCharsPerResult
	}
	if o.SearchProcessor == "" {
		o.SearchProcessor = parallel.ProcessorBase
	}
	if o.TaskProcessor == "" {
		o.TaskProcessor = parallel.ProcessorBase
	}
	return o
}

// Matcher finds purchasable products for lost or stolen item descriptions.
type Matcher struct {
	client parallel.Client
	parser *parser.ItemParser
	opts   Options
}

// New creates a Matcher over the given provider client.
func New(client parallel.Client, opts Options) *Matcher {
	return &Matcher{
		client: client,
		parser: parser.NewItemParser(),
		opts:   opts.withDefaults(),
	}
}

// FindMatchingProducts resolves a free-text item description into a ranked
// list of product matches.
//
// Validation failures (empty or over-length description, unknown strategy)
// surface before any provider call. Provider and extraction failures degrade
// into metadata and fewer (possibly zero) products; the only provider error
// that surfaces is a credential rejection on a strategy with no fallback.
func (m *Matcher) FindMatchingProducts(ctx context.Context, description string, maxResults int, strategy model.Strategy) (result *model.SearchResult, err error) {
	start := time.Now()

	if strings.TrimSpace(description) == "" {
		return nil, model.ErrEmptyDescription
	}
	if n := utf8.RuneCountInString(description); n > model.MaxDescriptionLen {
		return nil, eris.Wrapf(model.ErrDescriptionTooLong, "%d characters", n)
	}
	if _, perr := model.ParseStrategy(string(strategy)); perr != nil {
		return nil, eris.Wrapf(model.ErrInvalidStrategy, "%q", strategy)
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = eris.Wrapf(model.ErrMatchingFailed, "panic: %v", r)
		}
	}()

	zap.L().Info("finding matches",
		zap.String("description", truncate(description, 100)),
		zap.String("strategy", string(strategy)),
		zap.Int("max_results", maxResults),
	)

	item := m.parser.Parse(description)
	queries := parser.GenerateQueries(item)
	goal := BuildResearchGoal(item)

	products, meta, err := m.execute(ctx, goal, queries, maxResults, strategy)
	if err != nil {
		return nil, err
	}

	model.SortByConfidence(products)
	meta.SearchQueries = queries
	meta.ResearchGoal = goal

	result = &model.SearchResult{
		Query:           item,
		MatchedProducts: products,
		SearchMetadata:  meta,
		ProcessingTime:  time.Since(start),
		TotalResults:    len(products),
	}

	zap.L().Info("matching complete",
		zap.Int("products", len(products)),
		zap.String("api_used", meta.APIUsed),
		zap.Duration("processing_time", result.ProcessingTime),
	)
	return result, nil
}

// truncate shortens s to n characters, never splitting a multibyte rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
