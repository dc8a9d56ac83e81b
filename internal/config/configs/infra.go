package configs

import "time"

// Kafka enables lifecycle event publishing when Brokers is non-empty.
type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"campaign-lifecycle"`
}

// Redis enables the shared in-flight guard when URL is set.
type Redis struct {
	URL      string        `env:"URL"`
	ClaimTTL time.Duration `env:"CLAIM_TTL" envDefault:"10m"`
}
