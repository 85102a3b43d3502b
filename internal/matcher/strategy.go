package matcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/itemmatch/internal/extract"
	"github.com/sells-group/itemmatch/internal/model"
	"github.com/sells-group/itemmatch/pkg/parallel"
)

// Provider labels recorded in search metadata.
const (
	apiSearch         = "Search API"
	apiSearchOnly     = "Search API (Only)"
	apiSearchFallback = "Search API (Fallback)"
	apiSearchFailed   = "Search API (Failed)"
	apiTask           = "Task API"
	apiTaskOnly       = "Task API (Only)"
	apiTaskFallback   = "Task API (Fallback)"
	apiTaskFailed     = "Task API (Failed)"
	apiBothFailed     = "Both APIs Failed"
)

// execute runs the chosen provider strategy: a deterministic sequence of at
// most two sequential provider calls, never concurrent.
func (m *Matcher) execute(ctx context.Context, goal string, queries []string, maxResults int, strategy model.Strategy) ([]model.Product, model.SearchMetadata, error) {
	zap.L().Debug("executing api strategy", zap.String("strategy", string(strategy)))

	switch strategy {
	case model.StrategySearchFirst:
		return m.searchFirst(ctx, goal, queries, maxResults)
	case model.StrategyTaskFirst:
		return m.taskFirst(ctx, goal, queries, maxResults)
	case model.StrategySearchOnly:
		return m.searchOnly(ctx, goal, queries, maxResults)
	case model.StrategyTaskOnly:
		return m.taskOnly(ctx, goal, maxResults)
	default:
		// Unreachable: the strategy was validated at the entry point.
		return nil, model.SearchMetadata{}, eris.Wrapf(model.ErrInvalidStrategy, "%q", strategy)
	}
}

// sufficient is the client-side quality gate: the count of extracted
// products, never a provider-reported signal.
func (m *Matcher) sufficient(count, maxResults int) bool {
	return count >= maxResults/m.opts.SufficientDivisor
}

func (m *Matcher) searchFirst(ctx context.Context, goal string, queries []string, maxResults int) ([]model.Product, model.SearchMetadata, error) {
	products, dur, err := m.callSearch(ctx, goal, queries, maxResults)
	if err != nil {
		zap.L().Warn("search api failed, falling back to task api",
			zap.Duration("duration", dur), zap.Error(err))
		reason := fmt.Sprintf("Search API failed: %s (after %.2fs)", err.Error(), dur.Seconds())
		return m.fallbackToTask(ctx, goal, maxResults, reason)
	}

	if m.sufficient(len(products), maxResults) {
		meta := model.SearchMetadata{
			APIUsed:     apiSearch,
			APIDuration: dur,
			PerformanceNotes: fmt.Sprintf("Search API: %.2fs for %d products, no fallback needed",
				dur.Seconds(), len(products)),
		}
		return products, meta, nil
	}

	zap.L().Warn("search api returned too few products, falling back to task api",
		zap.Int("products", len(products)))
	reason := fmt.Sprintf("Insufficient results from Search API (%d products, %.2fs)",
		len(products), dur.Seconds())
	return m.fallbackToTask(ctx, goal, maxResults, reason)
}

func (m *Matcher) taskFirst(ctx context.Context, goal string, queries []string, maxResults int) ([]model.Product, model.SearchMetadata, error) {
	resp, dur, err := m.callTask(ctx, goal, maxResults)
	if err != nil {
		zap.L().Warn("task api failed, falling back to search api",
			zap.Duration("duration", dur), zap.Error(err))
		reason := fmt.Sprintf("Task API failed: %s (after %.2fs)", err.Error(), dur.Seconds())
		return m.fallbackToSearch(ctx, goal, queries, maxResults, reason)
	}

	if strings.TrimSpace(resp.Output) == "" {
		zap.L().Warn("task api returned no usable output, falling back to search api")
		reason := fmt.Sprintf("Task API returned invalid result (after %.2fs)", dur.Seconds())
		return m.fallbackToSearch(ctx, goal, queries, maxResults, reason)
	}

	products := extract.ExtractStructured(resp.Output, maxResults)
	if m.sufficient(len(products), maxResults) {
		meta := model.SearchMetadata{
			APIUsed:     apiTask,
			APIDuration: dur,
			PerformanceNotes: fmt.Sprintf("Task API: %.2fs for %d structured products",
				dur.Seconds(), len(products)),
		}
		return products, meta, nil
	}

	zap.L().Warn("task api returned too few products, falling back to search api",
		zap.Int("products", len(products)))
	reason := fmt.Sprintf("Insufficient results from Task API (%d products, %.2fs)",
		len(products), dur.Seconds())
	return m.fallbackToSearch(ctx, goal, queries, maxResults, reason)
}

func (m *Matcher) searchOnly(ctx context.Context, goal string, queries []string, maxResults int) ([]model.Product, model.SearchMetadata, error) {
	products, dur, err := m.callSearch(ctx, goal, queries, maxResults)
	if err != nil {
		if parallel.IsAuth(err) {
			// No fallback to absorb a rejected credential.
			return nil, model.SearchMetadata{}, eris.Wrap(err, "search api")
		}
		zap.L().Error("search api failed with no fallback available", zap.Error(err))
		meta := model.SearchMetadata{
			APIUsed:     apiSearchFailed,
			APIDuration: dur,
			PerformanceNotes: fmt.Sprintf("Search API failed after %.2fs: %s (no fallback available)",
				dur.Seconds(), err.Error()),
		}
		return nil, meta, nil
	}

	meta := model.SearchMetadata{
		APIUsed:     apiSearchOnly,
		APIDuration: dur,
		PerformanceNotes: fmt.Sprintf("Search API only: %.2fs for %d products",
			dur.Seconds(), len(products)),
	}
	return products, meta, nil
}

func (m *Matcher) taskOnly(ctx context.Context, goal string, maxResults int) ([]model.Product, model.SearchMetadata, error) {
	resp, dur, err := m.callTask(ctx, goal, maxResults)
	if err != nil {
		if parallel.IsAuth(err) {
			return nil, model.SearchMetadata{}, eris.Wrap(err, "task api")
		}
		zap.L().Error("task api failed with no fallback available", zap.Error(err))
		meta := model.SearchMetadata{
			APIUsed:     apiTaskFailed,
			APIDuration: dur,
			PerformanceNotes: fmt.Sprintf("Task API failed after %.2fs: %s (no fallback available)",
				dur.Seconds(), err.Error()),
		}
		return nil, meta, nil
	}

	if strings.TrimSpace(resp.Output) == "" {
		meta := model.SearchMetadata{
			APIUsed:     apiTaskFailed,
			APIDuration: dur,
			PerformanceNotes: fmt.Sprintf("Task API failed after %.2fs: empty result (no fallback available)",
				dur.Seconds()),
		}
		return nil, meta, nil
	}

	products := extract.ExtractStructured(resp.Output, maxResults)
	meta := model.SearchMetadata{
		APIUsed:     apiTaskOnly,
		APIDuration: dur,
		PerformanceNotes: fmt.Sprintf("Task API only: %.2fs for %d structured products",
			dur.Seconds(), len(products)),
	}
	return products, meta, nil
}

func (m *Matcher) fallbackToTask(ctx context.Context, goal string, maxResults int, reason string) ([]model.Product, model.SearchMetadata, error) {
	resp, dur, err := m.callTask(ctx, goal, maxResults)
	if err != nil {
		zap.L().Error("task api fallback also failed", zap.Error(err))
		meta := model.SearchMetadata{
			APIUsed:        apiBothFailed,
			APIDuration:    dur,
			FallbackReason: reason,
			PerformanceNotes: fmt.Sprintf("Both APIs failed. Search API reason: %s; Task API failed after %.2fs: %s",
				reason, dur.Seconds(), err.Error()),
		}
		return nil, meta, nil
	}

	if strings.TrimSpace(resp.Output) == "" {
		meta := model.SearchMetadata{
			APIUsed:        apiTaskFailed,
			APIDuration:    dur,
			FallbackReason: reason,
			PerformanceNotes: fmt.Sprintf("Both APIs failed. Search API reason: %s; Task API returned empty result after %.2fs",
				reason, dur.Seconds()),
		}
		return nil, meta, nil
	}

	products := extract.ExtractStructured(resp.Output, maxResults)
	meta := model.SearchMetadata{
		APIUsed:        apiTaskFallback,
		APIDuration:    dur,
		FallbackReason: reason,
		PerformanceNotes: fmt.Sprintf("Task API fallback: %.2fs for %d structured products. Reason: %s",
			dur.Seconds(), len(products), reason),
	}
	return products, meta, nil
}

func (m *Matcher) fallbackToSearch(ctx context.Context, goal string, queries []string, maxResults int, reason string) ([]model.Product, model.SearchMetadata, error) {
	products, dur, err := m.callSearch(ctx, goal, queries, maxResults)
	if err != nil {
		zap.L().Error("search api fallback also failed", zap.Error(err))
		meta := model.SearchMetadata{
			APIUsed:        apiBothFailed,
			APIDuration:    dur,
			FallbackReason: reason,
			PerformanceNotes: fmt.Sprintf("Both APIs failed. Task API reason: %s; Search API failed after %.2fs: %s",
				reason, dur.Seconds(), err.Error()),
		}
		return nil, meta, nil
	}

	meta := model.SearchMetadata{
		APIUsed:        apiSearchFallback,
		APIDuration:    dur,
		FallbackReason: reason,
		PerformanceNotes: fmt.Sprintf("Search API fallback: %.2fs for %d products. Reason: %s",
			dur.Seconds(), len(products), reason),
	}
	return products, meta, nil
}

// callSearch runs the search provider and mines products from its excerpts.
func (m *Matcher) callSearch(ctx context.Context, goal string, queries []string, maxResults int) ([]model.Product, time.Duration, error) {
	start := time.Now()
	resp, err := m.client.Search(ctx, parallel.SearchRequest{
		Objective:         goal,
		SearchQueries:     queries,
		Processor:         m.opts.SearchProcessor,
		MaxResults:        maxResults * m.opts.SearchOverfetch,
		MaxCharsPerResult: m.opts.MaxCharsPerResult,
	})
	dur := time.Since(start)
	if err != nil {
		return nil, dur, err
	}
	return m.extractFromSearch(resp, maxResults), dur, nil
}

func (m *Matcher) extractFromSearch(resp *parallel.SearchResponse, maxResults int) []model.Product {
	var products []model.Product

	// Process more hits than requested so weak excerpts can be skipped.
	results := resp.Results
	if limit := maxResults * 2; len(results) > limit {
		results = results[:limit]
	}

	for _, r := range results {
		content := strings.Join(r.Excerpts, " ")
		if content == "" {
			content = r.Title
		}
		if content == "" {
			continue
		}
		products = append(products, extract.ExtractFromText(content, r.URL)...)
		if len(products) >= maxResults {
			break
		}
	}

	if len(products) > maxResults {
		products = products[:maxResults]
	}
	return products
}

// callTask runs the structured task provider. The call blocks until the
// remote job completes or the provider-side timeout elapses.
func (m *Matcher) callTask(ctx context.Context, goal string, maxResults int) (*parallel.TaskResponse, time.Duration, error) {
	start := time.Now()
	resp, err := m.client.RunTask(ctx, parallel.TaskRequest{
		Input:        goal,
		OutputSchema: taskOutputSchema(maxResults),
		Processor:    m.opts.TaskProcessor,
	})
	return resp, time.Since(start), err
}
