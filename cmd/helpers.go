package main

import (
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/itemmatch/internal/matcher"
	"github.com/sells-group/itemmatch/internal/resilience"
	"github.com/sells-group/itemmatch/pkg/parallel"
)

// initMatcher wires a Parallel AI client and matcher from loaded config.
func initMatcher(mode string) (*matcher.Matcher, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, eris.Wrap(err, "validate config")
	}

	retryCfg := resilience.DefaultRetryConfig()
	if cfg.Parallel.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.Parallel.MaxRetries
	}

	client := parallel.NewClient(cfg.Parallel.Key,
		parallel.WithBaseURL(cfg.Parallel.BaseURL),
		parallel.WithTaskTimeout(cfg.Parallel.TaskTimeoutSecs),
		parallel.WithRetry(retryCfg),
		parallel.WithRateLimit(rate.Limit(cfg.Parallel.RateLimitRPS), cfg.Parallel.RateLimitBurst),
	)

	return matcher.New(client, matcher.Options{
		SearchOverfetch:   cfg.Match.SearchOverfetch,
		SufficientDivisor: cfg.Match.SufficientDivisor,
		MaxCharsPerResult: cfg.Match.MaxCharsPerResult,
		SearchProcessor:   parallel.Processor(cfg.Match.SearchProcessor),
		TaskProcessor:     parallel.Processor(cfg.Match.TaskProcessor),
	}), nil
}
