package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/config/configs"
)

// Config aggregates every configuration section of the monitor. Fields are
// populated from environment variables; nested sections use envPrefix.
type Config struct {
	Env string `env:"ENV" envDefault:"prod"`

	HTTP      configs.HTTP      `envPrefix:"HTTP_"`
	Log       configs.Logger    `envPrefix:"LOG_"`
	Psql      configs.Postgres  `envPrefix:"PSQL_"`
	Ethereum  configs.Ethereum  `envPrefix:"ETH_"`
	Social    configs.Social    `envPrefix:"SOCIAL_"`
	Quality   configs.Quality   `envPrefix:"QUALITY_"`
	Execution configs.Execution `envPrefix:"EXEC_"`
	Scheduler configs.Scheduler `envPrefix:"SCHEDULER_"`
	Payout    configs.Payout    `envPrefix:"PAYOUT_"`
	Kafka     configs.Kafka     `envPrefix:"KAFKA_"`
	Redis     configs.Redis     `envPrefix:"REDIS_"`
}

// Load reads the configuration from the environment and validates the
// settings the monitor cannot start without.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that env tags cannot express.
func (c Config) Validate() error {
	if c.Scheduler.PollInterval <= 0 {
		return fmt.Errorf("SCHEDULER_POLL_INTERVAL must be positive")
	}
	if c.Scheduler.CompletionTimeLimit <= 0 {
		return fmt.Errorf("SCHEDULER_COMPLETION_TIME_LIMIT must be positive")
	}
	if c.Scheduler.CallTimeout <= 0 {
		return fmt.Errorf("SCHEDULER_CALL_TIMEOUT must be positive")
	}
	if c.Payout.TopN <= 0 {
		return fmt.Errorf("PAYOUT_TOP_N must be positive")
	}
	if c.Payout.FeePercent < 0 || c.Payout.FeePercent >= 100 {
		return fmt.Errorf("PAYOUT_FEE_PERCENT must be in [0,100)")
	}
	if c.Social.PageSize <= 0 {
		return fmt.Errorf("SOCIAL_PAGE_SIZE must be positive")
	}
	return nil
}
