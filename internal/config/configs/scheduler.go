package configs

import "time"

// Scheduler holds the lifecycle policy constants. An empty LeaderboardTemplate
// disables the post-payout leaderboard announcement.
type Scheduler struct {
	PollInterval        time.Duration `env:"POLL_INTERVAL" envDefault:"30s"`
	CompletionTimeLimit time.Duration `env:"COMPLETION_TIME_LIMIT" envDefault:"6h"`
	CallTimeout         time.Duration `env:"CALL_TIMEOUT" envDefault:"20s"`
	AnnounceTemplate    string        `env:"ANNOUNCE_TEMPLATE" envDefault:"New campaign live! Promote ${{.Token}} with {{.Hashtag}} to share a {{.Bounty}} bounty."`
	LeaderboardTemplate string        `env:"LEADERBOARD_TEMPLATE" envDefault:""`
}

// Payout configures the reward split.
type Payout struct {
	TopN       int     `env:"TOP_N" envDefault:"10"`
	FeePercent float64 `env:"FEE_PERCENT" envDefault:"5"`
}
