package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Parallel ParallelConfig `yaml:"parallel" mapstructure:"parallel"`
	Match    MatchConfig    `yaml:"match" mapstructure:"match"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ParallelConfig holds Parallel AI API settings.
type ParallelConfig struct {
	Key             string  `yaml:"key" mapstructure:"key"`
	BaseURL         string  `yaml:"base_url" mapstructure:"base_url"`
	TaskTimeoutSecs int     `yaml:"task_timeout_secs" mapstructure:"task_timeout_secs"`
	MaxRetries      int     `yaml:"max_retries" mapstructure:"max_retries"`
	RateLimitRPS    float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst  int     `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// MatchConfig configures product matching behavior.
type MatchConfig struct {
	MaxResults        int    `yaml:"max_results" mapstructure:"max_results"`
	Strategy          string `yaml:"strategy" mapstructure:"strategy"`
	SearchOverfetch   int    `yaml:"search_overfetch" mapstructure:"search_overfetch"`
	SufficientDivisor int    `yaml:"sufficient_divisor" mapstructure:"sufficient_divisor"`
	MaxCharsPerResult int    `yaml:"max_chars_per_result" mapstructure:"max_chars_per_result"`
	SearchProcessor   string `yaml:"search_processor" mapstructure:"search_processor"`
	TaskProcessor     string `yaml:"task_processor" mapstructure:"task_processor"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ITEMMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("parallel.base_url", "https://api.parallel.ai")
	v.SetDefault("parallel.task_timeout_secs", 100)
	v.SetDefault("parallel.max_retries", 3)
	v.SetDefault("parallel.rate_limit_rps", 5)
	v.SetDefault("parallel.rate_limit_burst", 5)
	v.SetDefault("match.max_results", 5)
	v.SetDefault("match.strategy", "search_first")
	v.SetDefault("match.search_overfetch", 3)
	v.SetDefault("match.sufficient_divisor", 2)
	v.SetDefault("match.max_chars_per_result", 1500)
	v.SetDefault("match.search_processor", "base")
	v.SetDefault("match.task_processor", "base")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a run mode requires. Modes: "match", "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "match", "serve":
		if c.Parallel.Key == "" {
			problems = append(problems, "parallel.key is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if mode == "serve" && c.Server.Port <= 0 {
		problems = append(problems, "server.port must be > 0")
	}
	if c.Match.MaxResults < 1 || c.Match.MaxResults > 50 {
		problems = append(problems, "match.max_results must be between 1 and 50")
	}
	if c.Match.SearchOverfetch < 1 {
		problems = append(problems, "match.search_overfetch must be >= 1")
	}
	if c.Match.SufficientDivisor < 1 {
		problems = append(problems, "match.sufficient_divisor must be >= 1")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
